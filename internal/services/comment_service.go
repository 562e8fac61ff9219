package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/conduit/backend/internal/metrics"
	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"github.com/anonto42/conduit/backend/internal/viewer"
	"go.uber.org/zap"
)

// CommentService posts, lists, projects and deletes comments on articles.
// Each method runs in exactly one unit of work.
type CommentService struct {
	uow     repositories.UnitOfWork
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(uow repositories.UnitOfWork, m *metrics.Metrics, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{uow: uow, metrics: m, logger: logger}
}

// PostComment adds comment to the article identified by slug and returns it
// with its id and author set.
func (s *CommentService) PostComment(ctx context.Context, slug string, comment *models.Comment) (*models.Comment, error) {
	var stored *models.Comment
	err := s.uow.Do(ctx, repositories.ReadWrite, func(ctx context.Context, st repositories.Stores) error {
		article, err := findArticle(ctx, st, slug)
		if err != nil {
			return err
		}

		author, err := st.Users.FindByID(ctx, comment.AuthorID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return fmt.Errorf("%w: comment author %d", ErrEntityNotFound, comment.AuthorID)
			}
			return err
		}
		comment.Author = author

		stored = article.AddComment(comment)
		return st.Articles.Save(ctx, article)
	})
	if err != nil {
		s.recordError("post", err)
		return nil, err
	}

	s.metrics.IncrementCommentPosted()
	s.logger.Info("Comment posted",
		zap.String("slug", models.Slugify(slug)),
		zap.Uint("comment_id", stored.ID),
		zap.Uint("author_id", stored.AuthorID),
	)
	return stored, nil
}

// ViewComment projects comment for the current viewer.
func (s *CommentService) ViewComment(ctx context.Context, current viewer.Identity, comment *models.Comment) (*models.CommentView, error) {
	var view models.CommentView
	err := s.uow.Do(ctx, repositories.ReadOnly, func(ctx context.Context, st repositories.Stores) error {
		me, err := resolveViewer(ctx, st, current)
		if err != nil {
			return err
		}
		view = models.ViewComment(comment, me)
		return nil
	})
	if err != nil {
		s.recordError("view", err)
		return nil, err
	}

	s.metrics.AddCommentViews(1)
	return &view, nil
}

// ViewAllCommentsBySlug lists the article's comments in display order, each
// projected for the current viewer. It fails as soon as a comment cannot be
// projected, so listing a commented article requires a viewer.
func (s *CommentService) ViewAllCommentsBySlug(ctx context.Context, current viewer.Identity, slug string) ([]models.CommentView, error) {
	views := []models.CommentView{}
	err := s.uow.Do(ctx, repositories.ReadOnly, func(ctx context.Context, st repositories.Stores) error {
		article, err := findArticle(ctx, st, slug)
		if err != nil {
			return err
		}

		var me *models.User
		for _, c := range article.Comments {
			if me == nil {
				if me, err = resolveViewer(ctx, st, current); err != nil {
					return err
				}
			}
			views = append(views, models.ViewComment(c, me))
		}
		return nil
	})
	if err != nil {
		s.recordError("list", err)
		return nil, err
	}

	s.metrics.AddCommentViews(len(views))
	return views, nil
}

// DeleteComment removes comment id from the article identified by slug on
// behalf of the current viewer. The result tells a removed comment apart
// from an unknown one and from one written by someone else.
func (s *CommentService) DeleteComment(ctx context.Context, current viewer.Identity, slug string, id uint) (models.DeleteResult, error) {
	result := models.CommentNotFound
	err := s.uow.Do(ctx, repositories.ReadWrite, func(ctx context.Context, st repositories.Stores) error {
		me, err := resolveViewer(ctx, st, current)
		if err != nil {
			return err
		}

		article, err := findArticle(ctx, st, slug)
		if err != nil {
			return err
		}

		result = article.DeleteCommentByIDAndUser(id, me)
		if !result.Deleted() {
			return nil
		}
		return st.Articles.Save(ctx, article)
	})
	if err != nil {
		s.recordError("delete", err)
		return models.CommentNotFound, err
	}

	s.metrics.RecordCommentDeletion(result.String())
	if result == models.CommentForbidden {
		s.logger.Warn("Comment deletion refused",
			zap.String("slug", models.Slugify(slug)),
			zap.Uint("comment_id", id),
			zap.Uint("user_id", current.UserID),
		)
	}
	return result, nil
}

func (s *CommentService) recordError(operation string, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, ErrEntityNotFound):
		reason = "not_found"
	case errors.Is(err, ErrNoCurrentUser):
		reason = "unauthenticated"
	default:
		s.logger.Error("Comment operation failed", zap.String("operation", operation), zap.Error(err))
	}
	s.metrics.RecordOperationError(operation, reason)
}

// findArticle normalizes slug and resolves the article aggregate.
func findArticle(ctx context.Context, st repositories.Stores, slug string) (*models.Article, error) {
	article, err := st.Articles.FindBySlug(ctx, models.Slugify(slug))
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return nil, fmt.Errorf("%w: article %q", ErrEntityNotFound, slug)
		}
		return nil, err
	}
	return article, nil
}

// resolveViewer loads the current user with its followed set.
func resolveViewer(ctx context.Context, st repositories.Stores, current viewer.Identity) (*models.User, error) {
	if !current.Authenticated() {
		return nil, ErrNoCurrentUser
	}
	me, err := st.Users.FindByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNoCurrentUser, current.UserID)
		}
		return nil, err
	}
	return me, nil
}
