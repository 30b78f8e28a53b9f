package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/sage/config"
	"github.com/Ramsey-B/sage/internal/repositories/catalogrecord"
	"github.com/Ramsey-B/sage/pkg/database"
	sagekafka "github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/logging"
	"github.com/Ramsey-B/sage/pkg/manifest"
	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/middleware"
	cacheroutes "github.com/Ramsey-B/sage/pkg/routes/cache"
	catalogroutes "github.com/Ramsey-B/sage/pkg/routes/catalog"
	"github.com/Ramsey-B/sage/pkg/routes/health"
	matchroutes "github.com/Ramsey-B/sage/pkg/routes/match"
	"github.com/Ramsey-B/sage/pkg/startup"
	"github.com/Ramsey-B/sage/pkg/tracing"
	"github.com/Ramsey-B/sage/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, flush, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Enabled:     cfg.TracingEnabled,
		OTLP: exporters.OTLPConfig{
			Endpoint: cfg.TracingEndpoint,
			Insecure: cfg.TracingInsecure,
			Timeout:  10 * time.Second,
		},
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize tracing")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("service exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger ectologger.Logger) error {
	var (
		db       database.DB
		repo     *catalogrecord.Repository
		producer *sagekafka.Producer
		consumer *sagekafka.Consumer
		checker  *health.Checker
		e        *echo.Echo
	)

	scorer := matching.NewScorer()
	vendors := matching.NewVendorResolver(nil)
	similarity := matching.NewSimilarityScorer(scorer, vendors, matching.SimilarityConfig{
		HighTierThreshold:     cfg.MatchHighTierThreshold,
		MediumTierThreshold:   cfg.MatchMediumTierThreshold,
		VendorMismatchCeiling: matching.DefaultSimilarityConfig().VendorMismatchCeiling,
	})
	cache := matching.NewMatchCache(matching.MatchCacheConfig{
		MaxSize:    cfg.MatchCacheSize,
		DefaultTTL: cfg.MatchCacheTTL,
	}, matching.RealClock())

	boot := startup.New(logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&component{
		name: "database",
		start: func(ctx context.Context) error {
			var err error
			db, err = database.Connect(ctx, logger, database.Config{
				Host:            cfg.DatabaseHost,
				Port:            cfg.DatabasePort,
				User:            cfg.DatabaseUserName,
				Password:        cfg.DatabasePassword,
				Name:            cfg.DatabaseName,
				SSLMode:         cfg.DatabaseSSLMode,
				MaxOpenConns:    cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
				ConnectAttempts: cfg.DatabaseReconnectRetryCount,
			})
			if err != nil {
				return err
			}

			driver, err := migratepg.WithInstance(db.Sqlx().DB, &migratepg.Config{})
			if err != nil {
				return err
			}
			migrations := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
			})
			if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
				return err
			}

			repo = catalogrecord.NewRepository(db, logger)
			return nil
		},
		stop: func(context.Context) error { return db.Close() },
	})

	orchestratorCfg := matching.OrchestratorConfig{
		VendorFuzzyThreshold:   cfg.MatchVendorFuzzyThreshold,
		CrossVendorThreshold:   cfg.MatchCrossVendorThreshold,
		AttributeThreshold:     cfg.MatchAttributeThreshold,
		ComprehensiveThreshold: cfg.MatchComprehensiveThreshold,
		MaxResults:             cfg.MatchMaxResults,
		Workers:                cfg.MatchWorkerCount,
		CacheTTL:               cfg.MatchCacheTTL,
	}
	var orchestrator *matching.Orchestrator

	boot.AddDependency(&component{
		name: "container",
		deps: []string{"database"},
		start: func(ctx context.Context) error {
			orchestrator = matching.NewOrchestrator(logger, repo, vendors, similarity, cache, orchestratorCfg)

			container, err := ectoinject.NewDIDefaultContainer()
			if err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[*catalogrecord.Repository](container, repo); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[*matching.Orchestrator](container, orchestrator); err != nil {
				return err
			}
			return nil
		},
		stop: func(context.Context) error { return nil },
	})

	boot.AddDependency(&component{
		name: "kafka",
		deps: []string{"container"},
		start: func(ctx context.Context) error {
			producer = sagekafka.NewProducer(sagekafka.ProducerConfig{
				Brokers:      cfg.KafkaBrokers,
				Topic:        cfg.KafkaResultsTopic,
				BatchSize:    cfg.KafkaBatchSize,
				BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
				RequiredAcks: cfg.KafkaRequiredAcks,
				Compression:  cfg.KafkaCompression,
			}, logger)

			if !cfg.KafkaConsumerEnabled {
				return nil
			}
			processor := manifest.NewProcessor(logger, orchestrator, repo, producer)
			consumer = sagekafka.NewConsumer(cfg, logger, processor.Handle)
			return consumer.Start(ctx)
		},
		stop: func(context.Context) error {
			if consumer != nil {
				if err := consumer.Stop(); err != nil {
					return err
				}
			}
			return producer.Close()
		},
	})

	boot.AddDependency(&component{
		name: "http",
		deps: []string{"container"},
		start: func(ctx context.Context) error {
			e = echo.New()
			e.HideBanner = true
			e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
			e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
			e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

			e.HTTPErrorHandler = middleware.Error(logger)
			e.Use(otelecho.Middleware(cfg.AppName))
			e.Use(middleware.Context())
			e.Use(middleware.Logger(logger))
			e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
				AllowOrigins: cfg.AllowOrigins,
				AllowMethods: cfg.AllowMethods,
			}))

			checker = health.NewChecker(db, version)
			checker.RegisterRoutes(e)
			e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

			api := e.Group("/api/v1", middleware.RequireTenant())
			matchroutes.Register(api.Group("/match"))
			catalogroutes.Register(api.Group("/catalog"))
			cacheroutes.Register(api.Group("/cache"))

			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("http server stopped")
				}
			}()
			checker.SetReady(true)
			return nil
		},
		stop: func(ctx context.Context) error {
			checker.SetReady(false)
			return e.Shutdown(ctx)
		},
	})

	if err := boot.Start(ctx); err != nil {
		return err
	}
	logger.WithField("port", cfg.Port).Info("sage started")

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return boot.Stop(shutdownCtx)
}

// component adapts a pair of closures to the startup.Dependency interface
type component struct {
	name  string
	deps  []string
	start func(ctx context.Context) error
	stop  func(ctx context.Context) error
}

func (c *component) GetName() string                 { return c.name }
func (c *component) DependsOn() []string             { return c.deps }
func (c *component) Start(ctx context.Context) error { return c.start(ctx) }
func (c *component) Stop(ctx context.Context) error  { return c.stop(ctx) }
