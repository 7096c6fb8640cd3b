// Command server runs the recipe-sharing HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and environment configuration
//  2. Configure zerolog (level, optional pretty console output)
//  3. Initialize OpenTelemetry tracing (optional)
//  4. Open SQLite, run migrations, seed the tag/ingredient catalogs
//  5. Select the image store backend (local disk or S3)
//  6. Mount routes and serve until SIGINT/SIGTERM, then drain gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/foodgram/go-recipe-backend/internal/auth"
	"github.com/foodgram/go-recipe-backend/internal/config"
	httpapi "github.com/foodgram/go-recipe-backend/internal/http"
	"github.com/foodgram/go-recipe-backend/internal/observability"
	"github.com/foodgram/go-recipe-backend/internal/repo"
	"github.com/foodgram/go-recipe-backend/internal/services"
	"github.com/foodgram/go-recipe-backend/internal/storage"
	"github.com/foodgram/go-recipe-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Seed catalogs. Missing seed files are tolerated so fresh checkouts and
	// tests can start without fixtures.
	catalogSvc := services.NewCatalogService(db)
	nIng, nTags, err := catalogSvc.Seed(ctx, cfg.IngredientsPath, cfg.TagsPath)
	if err != nil {
		log.Warn().Err(err).Msg("catalog seed skipped")
	} else if nIng > 0 || nTags > 0 {
		log.Info().Int64("ingredients", nIng).Int64("tags", nTags).Msg("catalog seeded")
	}

	images, err := buildImageStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("image store setup failed")
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, images, tokens, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}

// buildImageStore constructs the configured blob store for recipe images.
func buildImageStore(ctx context.Context, cfg config.StorageConfig) (storage.ImageStore, error) {
	switch cfg.Backend {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return &storage.S3Store{
			Client: s3.NewFromConfig(awsCfg),
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
		}, nil
	default:
		if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
			return nil, err
		}
		return &storage.LocalStore{Dir: cfg.MediaDir, BaseURL: cfg.MediaBaseURL}, nil
	}
}
