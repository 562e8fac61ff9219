package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/conduit/backend/internal/metrics"
	"github.com/anonto42/conduit/backend/internal/middleware"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"github.com/anonto42/conduit/backend/internal/router"
	"github.com/anonto42/conduit/backend/pkg/config"
	"github.com/anonto42/conduit/backend/pkg/firebase"
	"github.com/anonto42/conduit/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Conduit API",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("article_store", cfg.ArticleStore),
		zap.String("auth_provider", cfg.AuthProvider),
	)

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed")

	ctx := context.Background()
	verifier, err := newVerifier(ctx, cfg, db)
	if err != nil {
		log.Fatal("Failed to initialize authentication", zap.Error(err))
	}

	m := metrics.New(log)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, log)
	router.SetupRoutes(e, router.Dependencies{
		UnitOfWork: newUnitOfWork(cfg, db),
		Verifier:   verifier,
		Metrics:    m,
		Logger:     log,
	})

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := metricsServer.Start(":" + cfg.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		log.Info("Conduit API started", zap.String("address", ":"+cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func newUnitOfWork(cfg *config.Config, db *config.DB) repositories.UnitOfWork {
	if cfg.ArticleStore == config.ArticleStoreMongo {
		return repositories.NewMongoUnitOfWork(db.Mongo, db.Mongo.Database(cfg.MongoDatabase), db.Postgres)
	}
	return repositories.NewGormUnitOfWork(db.Postgres)
}

func newVerifier(ctx context.Context, cfg *config.Config, db *config.DB) (middleware.TokenVerifier, error) {
	if cfg.AuthProvider != config.AuthProviderFirebase {
		return middleware.NewJWTVerifier(cfg.JWTSecret), nil
	}

	app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return nil, err
	}
	return middleware.NewFirebaseVerifier(app.AuthClient, repositories.NewPostgresUserRepository(db.Postgres)), nil
}
