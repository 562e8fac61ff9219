package handlers

import (
	"net/http"

	"github.com/anonto42/conduit/backend/internal/middleware"
	"github.com/anonto42/conduit/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProfileHandler handles profile and follow/unfollow HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	logger         *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *services.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group, optional, required echo.MiddlewareFunc) {
	g.GET("/profiles/:username", h.GetProfile, optional)
	g.POST("/profiles/:username/follow", h.FollowUser, required)
	g.DELETE("/profiles/:username/follow", h.UnfollowUser, required)
}

// GetProfile returns a user's profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profileService.GetProfile(
		c.Request().Context(), middleware.CurrentViewer(c), c.Param("username"))
	if err != nil {
		return serviceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profile})
}

// FollowUser follows a user
func (h *ProfileHandler) FollowUser(c echo.Context) error {
	profile, err := h.profileService.Follow(
		c.Request().Context(), middleware.CurrentViewer(c), c.Param("username"))
	if err != nil {
		return serviceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profile})
}

// UnfollowUser unfollows a user
func (h *ProfileHandler) UnfollowUser(c echo.Context) error {
	profile, err := h.profileService.Unfollow(
		c.Request().Context(), middleware.CurrentViewer(c), c.Param("username"))
	if err != nil {
		return serviceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profile})
}
