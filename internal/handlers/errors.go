package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/conduit/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// serviceError maps service layer errors to HTTP errors. Anything unexpected
// is logged and reported as a 500 without leaking details.
func serviceError(c echo.Context, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrEntityNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNoCurrentUser):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, services.ErrInvalidFollow):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	logger.Error("Unhandled service error",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.Error(err),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
