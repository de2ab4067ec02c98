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
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/kirill-oleynik/signup-service/config"
	userrepo "github.com/kirill-oleynik/signup-service/internal/repositories/user"
	"github.com/kirill-oleynik/signup-service/internal/services/signup"
	"github.com/kirill-oleynik/signup-service/pkg/database"
	"github.com/kirill-oleynik/signup-service/pkg/hash"
	"github.com/kirill-oleynik/signup-service/pkg/kafka"
	"github.com/kirill-oleynik/signup-service/pkg/middleware"
	"github.com/kirill-oleynik/signup-service/pkg/routes/health"
	"github.com/kirill-oleynik/signup-service/pkg/routes/users"
	"github.com/kirill-oleynik/signup-service/pkg/startup"
	"github.com/kirill-oleynik/signup-service/pkg/tracing"
	"github.com/kirill-oleynik/signup-service/pkg/tracing/exporters"
)

const version = "0.1.0"

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := initTracing(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize tracing")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	dbDep := &databaseDependency{cfg: cfg, logger: logger}
	migrationDep := &migrationDependency{cfg: cfg, logger: logger, db: dbDep}
	kafkaDep := &kafkaDependency{cfg: cfg, logger: logger}

	boot := startup.New(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(dbDep)
	boot.AddDependency(migrationDep)
	boot.AddDependency(kafkaDep)

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}

	repo := userrepo.NewRepository(dbDep.db, logger)
	hasher := hash.NewBcryptHasher(cfg.BcryptCost)

	var publisher signup.EventPublisher
	var brokerPinger health.Pinger
	if kafkaDep.producer != nil {
		publisher = kafkaDep.producer
		brokerPinger = kafkaDep.producer
	}

	service := signup.NewService(repo, hasher, publisher, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	checker := health.NewChecker(dbDep.db, brokerPinger, version)
	checker.RegisterRoutes(e)

	v1 := e.Group("/api/v1")
	users.NewHandler(service, repo).RegisterRoutes(v1)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	go func() {
		checker.SetReady(true)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shut down http server")
	}
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to stop dependencies")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, _ = zap.NewDevelopment()
	} else {
		zapLogger, _ = zap.NewProduction()
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func initTracing(cfg config.Config) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter = &exporters.NoopExporter{}
	if cfg.TracingConsoleExport {
		consoleExporter, err := exporters.NewConsoleExporter()
		if err != nil {
			return nil, err
		}
		exporter = consoleExporter
	}
	return tracing.Init(cfg.AppName, exporter)
}

type databaseDependency struct {
	cfg    config.Config
	logger ectologger.Logger
	db     database.DB
}

func (d *databaseDependency) GetName() string { return "database" }

func (d *databaseDependency) DependsOn() []string { return nil }

func (d *databaseDependency) Start(ctx context.Context) error {
	db, err := database.Connect(ctx, database.Config{
		Driver:          d.cfg.DatabaseDriver,
		Host:            d.cfg.DatabaseHost,
		Port:            d.cfg.DatabasePort,
		UserName:        d.cfg.DatabaseUserName,
		Password:        d.cfg.DatabasePassword,
		Name:            d.cfg.DatabaseName,
		SSLMode:         d.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
	}, d.logger)
	if err != nil {
		return err
	}
	d.db = db
	return db.PingContext(ctx)
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

type migrationDependency struct {
	cfg    config.Config
	logger ectologger.Logger
	db     *databaseDependency
}

func (m *migrationDependency) GetName() string { return "migrations" }

func (m *migrationDependency) DependsOn() []string { return []string{"database"} }

func (m *migrationDependency) Start(ctx context.Context) error {
	instance, ok := m.db.db.(*database.DatabaseInstance)
	if !ok {
		return fmt.Errorf("unexpected database instance type %T", m.db.db)
	}

	driver, err := migratepg.WithInstance(instance.DB.DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	ms := database.NewMigrationService(m.logger, &database.MigrationConfig{
		MigrationFolderPath: m.cfg.DatabaseMigrationFolderPath,
		Version:             uint(m.cfg.DatabaseMigrationVersion),
		Force:               m.cfg.DatabaseMigrationForce,
		AutoRollback:        m.cfg.DatabaseMigrationAutoRollback,
	})
	return ms.Migrate(m.cfg.DatabaseName, driver)
}

func (m *migrationDependency) Stop(ctx context.Context) error { return nil }

type kafkaDependency struct {
	cfg      config.Config
	logger   ectologger.Logger
	producer *kafka.Producer
}

func (k *kafkaDependency) GetName() string { return "kafka-producer" }

func (k *kafkaDependency) DependsOn() []string { return nil }

func (k *kafkaDependency) Start(ctx context.Context) error {
	if !k.cfg.KafkaEnabled {
		k.logger.Info("Kafka producer disabled")
		return nil
	}

	producerConfig := kafka.DefaultProducerConfig()
	producerConfig.Brokers = k.cfg.KafkaBrokers
	producerConfig.Topic = k.cfg.KafkaUserTopic
	producerConfig.BatchSize = k.cfg.KafkaBatchSize
	producerConfig.BatchTimeout = time.Duration(k.cfg.KafkaBatchTimeout) * time.Millisecond
	producerConfig.RequiredAcks = k.cfg.KafkaRequiredAcks
	producerConfig.Compression = k.cfg.KafkaCompression

	producer, err := kafka.NewProducer(producerConfig, k.logger)
	if err != nil {
		return err
	}
	k.producer = producer
	return nil
}

func (k *kafkaDependency) Stop(ctx context.Context) error {
	if k.producer == nil {
		return nil
	}
	return k.producer.Close()
}
