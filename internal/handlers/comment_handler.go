package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/conduit/backend/internal/middleware"
	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
	logger         *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{commentService: commentService, logger: logger}
}

// RegisterCommentRoutes registers comment-related routes. optional lets
// anonymous callers through; required rejects them.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, optional, required echo.MiddlewareFunc) {
	g.POST("/articles/:slug/comments", h.CreateComment, required)
	g.GET("/articles/:slug/comments", h.GetComments, optional)
	g.DELETE("/articles/:slug/comments/:id", h.DeleteComment, required)
}

// CreateComment creates a new comment on an article
func (h *CommentHandler) CreateComment(c echo.Context) error {
	current := middleware.CurrentViewer(c)
	slug := c.Param("slug")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment := &models.Comment{AuthorID: current.UserID, Body: req.Comment.Body}
	stored, err := h.commentService.PostComment(ctx, slug, comment)
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	view, err := h.commentService.ViewComment(ctx, current, stored)
	if err != nil {
		return serviceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment": view})
}

// GetComments lists an article's comments for the current viewer
func (h *CommentHandler) GetComments(c echo.Context) error {
	views, err := h.commentService.ViewAllCommentsBySlug(
		c.Request().Context(), middleware.CurrentViewer(c), c.Param("slug"))
	if err != nil {
		return serviceError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": views})
}

// DeleteComment deletes a comment written by the current viewer
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	result, err := h.commentService.DeleteComment(
		c.Request().Context(), middleware.CurrentViewer(c), c.Param("slug"), uint(commentID))
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	switch result {
	case models.CommentDeleted:
		return c.JSON(http.StatusOK, echo.Map{})
	case models.CommentForbidden:
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	default:
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
}
