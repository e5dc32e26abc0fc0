package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// public base URL used for absolute post links (share emails, sitemap),
	// e.g. https://blog.serj-tubin.com; if empty, the request host is used
	SiteURL string `toml:"site_url"`
	// browser origins allowed to call the API
	AllowedOrigins []string `toml:"allowed_origins"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// postgres
	PostgresPort   string `toml:"postgres_port"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresDBName string `toml:"postgres_db_name"`

	// sqlite store, used by blogctl when postgres is not wanted
	SQLitePath string `toml:"sqlite_path"`

	// smtp; when smtp_host is empty, share emails are only logged
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	MailFrom string `toml:"mail_from"`

	// rate limiting of comment and share posts
	CommentRateLimitAllowedPerMin int `toml:"comment_rate_limit_allowed_per_min"`
	ShareRateLimitAllowedPerMin   int `toml:"share_rate_limit_allowed_per_min"`

	// cache
	CacheSizeMB        int `toml:"cache_size_mb"`
	SitemapCacheTTLSec int `toml:"sitemap_cache_ttl_sec"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}

	return cfg, nil
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}
	return t.Get(env)
}

// Secrets are never kept in the config file, only in the environment.
type Secrets struct {
	RedisPassword    string `env:"SERJ_REDIS_PASS"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	SMTPUsername     string `env:"SMTP_USERNAME"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
}

func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env secrets: %w", err)
	}
	return &s, nil
}
