// Package app assembles the clover service: configuration, database,
// tracing, Kafka, dependency injection, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/clover/config"
	datasetrepo "github.com/Ramsey-B/clover/internal/repositories/dataset"
	resultrepo "github.com/Ramsey-B/clover/internal/repositories/matchresult"
	recordrepo "github.com/Ramsey-B/clover/internal/repositories/record"
	rulesetrepo "github.com/Ramsey-B/clover/internal/repositories/ruleset"
	runrepo "github.com/Ramsey-B/clover/internal/repositories/run"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/processor"
	"github.com/Ramsey-B/clover/pkg/reconcile"
	datasetroutes "github.com/Ramsey-B/clover/pkg/routes/dataset"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	rulesetroutes "github.com/Ramsey-B/clover/pkg/routes/ruleset"
	runroutes "github.com/Ramsey-B/clover/pkg/routes/run"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

// Version is stamped at build time
var Version = "dev"

type repositories struct {
	datasets *datasetrepo.Repository
	records  *recordrepo.Repository
	ruleSets *rulesetrepo.Repository
	runs     *runrepo.Repository
	results  *resultrepo.Repository
}

// App is the assembled service
type App struct {
	cfg        *config.Config
	logger     ectologger.Logger
	logCleanup func()

	db       *sqlx.DB
	repos    repositories
	service  *reconcile.Service
	producer *kafka.Producer
	consumer *kafka.Consumer
	emitter  *events.Emitter
	tracer   *sdktrace.TracerProvider
	echo     *echo.Echo
	checker  *health.Checker

	startup *startup.Startup
}

// New loads configuration and builds an unstarted App
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		logCleanup: cleanup,
	}, nil
}

// Start brings the service up. It blocks until every dependency is running
// and the HTTP server is accepting traffic.
func (a *App) Start(ctx context.Context) error {
	s := startup.NewStartup(a.logger, a.cfg.StartupMaxAttempts)

	s.AddDependency(&dependency{
		name:  "database",
		start: a.startDatabase,
		stop:  a.stopDatabase,
	})
	s.AddDependency(&dependency{
		name:      "migrations",
		dependsOn: []string{"database"},
		start:     a.runMigrations,
	})
	s.AddDependency(&dependency{
		name:  "tracing",
		start: a.startTracing,
		stop:  a.stopTracing,
	})
	s.AddDependency(&dependency{
		name:      "kafka",
		dependsOn: []string{"database"},
		start:     a.startKafka,
		stop:      a.stopKafka,
	})
	s.AddDependency(&dependency{
		name:      "container",
		dependsOn: []string{"database", "kafka"},
		start:     a.buildContainer,
	})
	s.AddDependency(&dependency{
		name:      "http",
		dependsOn: []string{"migrations", "tracing", "container"},
		start:     a.startHTTP,
		stop:      a.stopHTTP,
	})

	a.startup = s
	if err := s.Start(ctx); err != nil {
		return err
	}

	a.checker.SetReady(true)
	a.logger.WithContext(ctx).WithFields(map[string]any{
		"app":  a.cfg.AppName,
		"port": a.cfg.Port,
	}).Info("Service started")
	return nil
}

// Stop shuts the service down in reverse dependency order
func (a *App) Stop(ctx context.Context) error {
	if a.checker != nil {
		a.checker.SetReady(false)
	}

	var err error
	if a.startup != nil {
		err = a.startup.Stop(ctx)
	}
	if a.logCleanup != nil {
		a.logCleanup()
	}
	return err
}

func (a *App) startDatabase(ctx context.Context) error {
	cfg := a.cfg
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
		cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, cfg.DatabaseDriver, dsn)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	a.db = db

	instance := database.NewDatabaseInstance(db, a.logger)
	a.repos = repositories{
		datasets: datasetrepo.NewRepository(instance, a.logger),
		records:  recordrepo.NewRepository(instance, a.logger),
		ruleSets: rulesetrepo.NewRepository(instance, a.logger),
		runs:     runrepo.NewRepository(instance, a.logger),
		results:  resultrepo.NewRepository(instance, a.logger),
	}
	return nil
}

func (a *App) stopDatabase(context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) runMigrations(context.Context) error {
	driver, err := migratepg.WithInstance(a.db.DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	service := database.NewMigrationService(a.logger, &database.MigrationConfig{
		MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
		Version:             uint(a.cfg.DatabaseMigrationVersion),
		Force:               a.cfg.DatabaseMigrationForce,
		AutoRollback:        a.cfg.DatabaseMigrationAutoRollback,
	})
	return service.Migrate(a.cfg.DatabaseName, driver)
}

func (a *App) startTracing(ctx context.Context) error {
	if !a.cfg.TracingEnabled {
		return nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch a.cfg.TracingExporter {
	case "otlp":
		otlpCfg := exporters.DefaultOTLPConfig()
		otlpCfg.Endpoint = a.cfg.TracingOTLPEndpoint
		otlpCfg.Insecure = a.cfg.TracingOTLPInsecure
		exporter, err = exporters.NewOTLPExporter(ctx, otlpCfg)
	default:
		exporter, err = exporters.NewConsoleExporter()
	}
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", a.cfg.AppName),
		)),
	)

	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(a.cfg.AppName))
	a.tracer = tp
	return nil
}

func (a *App) stopTracing(ctx context.Context) error {
	if a.tracer == nil {
		return nil
	}
	return a.tracer.Shutdown(ctx)
}

func (a *App) startKafka(ctx context.Context) error {
	cfg := a.cfg

	a.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, a.logger)
	a.emitter = events.NewEmitter(a.producer, a.logger)
	a.service = reconcile.NewService(
		a.logger,
		a.repos.datasets, a.repos.records, a.repos.ruleSets,
		a.repos.runs, a.repos.results,
		a.emitter,
	)

	if !cfg.KafkaConsumerEnabled {
		return nil
	}

	proc := processor.NewProcessor(a.logger, a.repos.datasets, a.repos.records, a.emitter)
	a.consumer = kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:       cfg.KafkaBrokers,
		Topic:         cfg.KafkaInputTopic,
		ConsumerGroup: cfg.KafkaConsumerGroup,
	}, a.logger, proc.ProcessMessage)
	return a.consumer.Start(ctx)
}

func (a *App) stopKafka(context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Stop(); err != nil {
			return err
		}
	}
	if a.producer != nil {
		return a.producer.Close()
	}
	return nil
}

func (a *App) startHTTP(context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware(a.cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.logger))
	e.HTTPErrorHandler = middleware.Error(a.logger)

	e.Server.ReadTimeout = time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(a.cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = a.cfg.MaxHeaderBytes

	var consumerHealth health.ConsumerHealth
	if a.consumer != nil {
		consumerHealth = a.consumer
	}
	a.checker = health.NewChecker(a.db, consumerHealth, Version)
	a.checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	datasetroutes.Register(api.Group("/datasets"))
	rulesetroutes.Register(api.Group("/rulesets"))
	runroutes.Register(api.Group("/runs"))

	a.echo = e

	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server stopped")
		}
	}()
	return nil
}

func (a *App) stopHTTP(ctx context.Context) error {
	if a.echo == nil {
		return nil
	}
	return a.echo.Shutdown(ctx)
}

// dependency adapts start/stop funcs to the startup.Dependency interface
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string     { return d.name }
func (d *dependency) DependsOn() []string { return d.dependsOn }

func (d *dependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}

func (d *dependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}
