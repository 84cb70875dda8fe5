package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"docvault/docs"
	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	handlers "docvault/internal/http/handler"
	"docvault/internal/http/middleware"
	"docvault/internal/logger"
	"docvault/internal/metrics"
	"docvault/internal/notify"
	"docvault/internal/otel"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
	"docvault/internal/storage"
)

// @title docvault API
// @version 1.0
// @description Document storage, sharing and controlled retrieval.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Production, cfg.Location())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := otel.Init(ctx, log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdownTracing(context.Background())
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	blobs, closeBlobs, err := newBlobStore(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}
	defer closeBlobs()

	publisher, closePublisher, err := newPublisher(cfg, db, log)
	if err != nil {
		return fmt.Errorf("init notifications: %w", err)
	}
	defer closePublisher()
	dispatcher := notify.NewDispatcher(publisher, log, time.Duration(cfg.Notify.PublishTimeoutSec)*time.Second)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	// Initialize repositories and services
	users := postgres.NewUserPostgres(db)
	deps := service.Deps{
		Store:     blobs,
		Documents: postgres.NewDocumentPostgres(db),
		Folders:   postgres.NewFolderPostgres(db),
		Shares:    postgres.NewSharePostgres(db),
		Users:     users,
		Notifier:  dispatcher,
		Metrics:   m,
		Log:       log,
	}
	svc := handlers.Services{
		Documents: service.NewDocumentService(deps, service.UploadPolicy{
			MaxBytes:            int64(cfg.MaxUploadBytes()),
			AllowedContentTypes: cfg.AllowedContentTypes,
		}),
		Folders:  service.NewFolderService(deps),
		Shares:   service.NewShareService(deps),
		Deletion: service.NewDeletionService(deps, service.DeletionPolicy{StrictStorage: cfg.Deletion.StrictStorage}),
		Stream:   service.NewStreamService(deps),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(log),
		BodyLimit:             cfg.MaxUploadBytes(),
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(middleware.NoSniff())
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, svc, handlers.Options{
		DB: db,
		Auth: middleware.Auth(middleware.AuthConfig{
			Secret: []byte(cfg.Auth.JWTSecret),
			Issuer: cfg.Auth.Issuer,
			Users:  users,
		}),
		Metrics:  m,
		Gatherer: reg,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server_started", zap.String("addr", ":"+cfg.Port), zap.String("blob_backend", cfg.Blob.Backend), zap.String("notify_backend", cfg.Notify.Backend))
		serveErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http_shutdown_failed", zap.Error(err))
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn("notifications_not_drained", zap.Error(err))
	}
	return nil
}

func newBlobStore(ctx context.Context, cfg *config.AppConfig, db *sql.DB) (storage.BlobStore, func(), error) {
	switch cfg.Blob.Backend {
	case "", "postgres":
		return storage.NewChunkedStore(storage.NewPostgresChunks(db), cfg.Blob.ChunkSize), func() {}, nil
	case "badger":
		bdb, err := storage.OpenBadger(cfg.Blob.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewChunkedStore(storage.NewBadgerChunks(bdb), cfg.Blob.ChunkSize), closeBadger(bdb), nil
	case "minio":
		// Initialize reusable S3-compatible object storage client (MinIO-supported)
		store, err := storage.NewMinIO(ctx, cfg.MinIO, cfg.Blob.ChunkSize)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}

func closeBadger(db *badger.DB) func() {
	return func() { _ = db.Close() }
}

func newPublisher(cfg *config.AppConfig, db *sql.DB, log *zap.Logger) (notify.Publisher, func(), error) {
	switch cfg.Notify.Backend {
	case "", "postgres":
		return notify.NewPostgresPublisher(db), func() {}, nil
	case "kafka":
		k, err := notify.NewKafkaPublisher(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return k, closeWith(k, log), nil
	case "log":
		return notify.NewLogPublisher(log), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

func closeWith(c io.Closer, log *zap.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn("close_failed", zap.Error(err))
		}
	}
}
