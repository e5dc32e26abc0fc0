package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/internal/blog/litestore"
	"github.com/2beens/serjblog/internal/cache"
	"github.com/2beens/serjblog/internal/config"
	"github.com/2beens/serjblog/internal/db"
	"github.com/2beens/serjblog/internal/mail"
	"github.com/2beens/serjblog/internal/middleware"
	"github.com/2beens/serjblog/internal/seo"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	liteStore   *litestore.Store
	store       blog.ContentStore
	mailSender  mail.Sender
	cache       cache.Cache
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     *config.Secrets
	VersionInfo string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	secrets := params.Secrets

	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
		cache:       cache.NewFreeCache(cfg.CacheSizeMB),
	}

	var extraCollectors []prometheus.Collector
	if cfg.PostgresHost != "" {
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBPassword:     secrets.PostgresPassword,
			TracingEnabled: secrets.HoneycombEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		s.dbPool = dbPool
		s.store = blog.NewRepo(dbPool)
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	} else {
		log.Warnf("postgres host not set, using sqlite content store: %s", cfg.SQLitePath)
		liteStore, err := litestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.liteStore = liteStore
		s.store = liteStore
	}

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("blog", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	s.redisClient = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: secrets.RedisPassword,
		DB:       0, // use default DB
	})
	rdbStatus := s.redisClient.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}
	s.rateLimiter = redis_rate.NewLimiter(s.redisClient)

	otelShutdown, err := tracing.HoneycombSetup(secrets.HoneycombEnabled, "blog-service", s.redisClient)
	if err != nil {
		return nil, err
	}
	s.otelShutdown = otelShutdown

	s.mailSender, err = newMailSender(cfg, secrets)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// newMailSender picks SMTP when a host is configured, otherwise share
// emails are only logged.
func newMailSender(cfg *config.Config, secrets *config.Secrets) (mail.Sender, error) {
	if cfg.SMTPHost == "" {
		log.Warnln("smtp host not set, share emails will only be logged")
		return mail.NewConsoleSender(cfg.MailFrom), nil
	}

	sender, err := mail.NewSMTPSender(mail.SMTPParams{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: secrets.SMTPUsername,
		Password: secrets.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("new smtp sender: %w", err)
	}
	return sender, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("blog-router"))

	blogHandler := blog.NewHandler(
		blog.NewService(s.store),
		blog.NewModerator(s.store),
		blog.NewDispatcher(s.mailSender, s.config.MailFrom),
		s.metricsManager,
		s.config.SiteURL,
	)
	blogHandler.SetupRoutes(
		r,
		s.rateLimiter,
		s.config.CommentRateLimitAllowedPerMin,
		s.config.ShareRateLimitAllowedPerMin,
	)

	seoHandler := seo.NewHandler(
		s.store,
		s.cache,
		time.Duration(s.config.SitemapCacheTTLSec)*time.Second,
		s.config.SiteURL,
	)
	seoHandler.SetupRoutes(r)

	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "resource not found", http.StatusNotFound)
	})

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins...))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if s.liteStore != nil {
		if err := s.liteStore.Close(); err != nil {
			log.Errorf("failed to close sqlite store: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
