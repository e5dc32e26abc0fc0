//go:build integration_test || all_tests

package test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"

	"github.com/2beens/serjblog/internal"
	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/internal/config"
	"github.com/2beens/serjblog/internal/db"
)

const (
	serverPort = 9000
	serverHost = "127.0.0.1"

	testDBName                = "serj_blog"
	testCommentsAllowedPerMin = 5
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

// IntegrationTestSuite runs the whole service against real postgres and
// redis containers.
type IntegrationTestSuite struct {
	suite.Suite

	DB         *sql.DB
	dbPool     *pgxpool.Pool
	repo       *blog.Repo
	dockerPool *dockertest.Pool
	server     *internal.Server
	httpClient *http.Client
	teardown   []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	fmt.Println("setting up test suite...")

	s.teardown = make([]func(), 0)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	var err error
	s.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	if err = s.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}
	fmt.Println("dockertest pool ping successful")

	redisPort, err := s.redisSetup()
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}
	fmt.Println("redis setup successful")

	pgPort, err := s.postgresSetup(ctx)
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}
	fmt.Println("postgres setup successful")

	cfg := getTestConfig(s.T().TempDir(), redisPort, pgPort)
	s.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:      cfg,
			Secrets:     &config.Secrets{},
			VersionInfo: "test-version-info",
		},
	)
	if err != nil {
		s.cleanup()
		log.Fatalf("new server: %s", err)
	}

	s.server.Serve(cfg.Host, cfg.Port)
	if err := s.dockerPool.Retry(func() error {
		resp, err := s.httpClient.Get(serverEndpoint + "/version")
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}); err != nil {
		s.cleanup()
		log.Fatalf("server not reachable: %s", err)
	}
	fmt.Println("server started")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *IntegrationTestSuite) cleanup() {
	fmt.Println(" --> cleaning up test suite...")
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			fmt.Printf(" --> test suite db close error: %s\n", err)
		}
	}
	for _, teardown := range s.teardown {
		teardown()
	}
	fmt.Println(" --> test suite cleanup done")
}

func getTestConfig(tempDir, redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Environment:                   "test",
		Host:                          serverHost,
		Port:                          serverPort,
		SiteURL:                       "https://blog.serj-tubin.com",
		AllowedOrigins:                []string{"https://www.serj-tubin.com"},
		LogLevel:                      "debug",
		LogsPath:                      filepath.Join(tempDir, "blog.log"),
		LogToStdout:                   true,
		PrometheusMetricsHost:         serverHost,
		PrometheusMetricsPort:         "9002",
		RedisHost:                     "localhost",
		RedisPort:                     redisPort,
		PostgresHost:                  "localhost",
		PostgresPort:                  postgresPort,
		PostgresDBName:                testDBName,
		MailFrom:                      "blog@serj-tubin.com",
		CommentRateLimitAllowedPerMin: testCommentsAllowedPerMin,
		ShareRateLimitAllowedPerMin:   5,
		CacheSizeMB:                   10,
		SitemapCacheTTLSec:            1,
	}
}

func (s *IntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := redisResource.Close(); err != nil {
			fmt.Printf("redis teardown: %s\n", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *IntegrationTestSuite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + testDBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := pgResource.Close(); err != nil {
			fmt.Printf("postgres teardown: %s\n", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := db.ConnString(db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: pgPort,
		DBName: testDBName,
	}) + "?sslmode=disable"

	s.DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db: %w", err)
	}
	if err := s.dockerPool.Retry(s.DB.Ping); err != nil {
		return "", fmt.Errorf("connect to db: %w", err)
	}

	if _, err := s.DB.ExecContext(ctx, db.Schema); err != nil {
		return "", fmt.Errorf("apply schema: %w", err)
	}

	s.dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: pgPort,
		DBName: testDBName,
	})
	if err != nil {
		return "", fmt.Errorf("new db pool: %w", err)
	}
	s.repo = blog.NewRepo(s.dbPool)

	return pgPort, nil
}
