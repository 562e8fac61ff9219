package router

import (
	"github.com/anonto42/conduit/backend/internal/handlers"
	"github.com/anonto42/conduit/backend/internal/metrics"
	"github.com/anonto42/conduit/backend/internal/middleware"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"github.com/anonto42/conduit/backend/internal/services"
	"github.com/anonto42/conduit/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	UnitOfWork repositories.UnitOfWork
	Verifier   middleware.TokenVerifier
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Validator = validators.NewValidator()
	if deps.Metrics != nil {
		e.Use(middleware.Metrics(deps.Metrics))
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Services ---
	commentService := services.NewCommentService(deps.UnitOfWork, deps.Metrics, logger)
	profileService := services.NewProfileService(deps.UnitOfWork, logger)

	optional := middleware.Authenticate(deps.Verifier, false)
	required := middleware.Authenticate(deps.Verifier, true)

	api := e.Group("/api")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentService, logger)
	commentHandler.RegisterCommentRoutes(api, optional, required)

	// Profile and follow routes
	profileHandler := handlers.NewProfileHandler(profileService, logger)
	profileHandler.RegisterProfileRoutes(api, optional, required)

	logger.Info("All routes configured.", zap.Int("routes", len(e.Routes())))
}
