package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"github.com/anonto42/conduit/backend/internal/viewer"
	"go.uber.org/zap"
)

// ProfileService shows profiles and maintains the follow graph.
type ProfileService struct {
	uow    repositories.UnitOfWork
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(uow repositories.UnitOfWork, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{uow: uow, logger: logger}
}

// GetProfile returns username's profile. Anonymous callers see
// following=false.
func (s *ProfileService) GetProfile(ctx context.Context, current viewer.Identity, username string) (*models.Profile, error) {
	var profile models.Profile
	err := s.uow.Do(ctx, repositories.ReadOnly, func(ctx context.Context, st repositories.Stores) error {
		target, err := findUser(ctx, st, username)
		if err != nil {
			return err
		}

		var me *models.User
		if current.Authenticated() {
			if me, err = resolveViewer(ctx, st, current); err != nil {
				return err
			}
		}
		profile = me.ViewProfile(target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Follow makes the current viewer follow username.
func (s *ProfileService) Follow(ctx context.Context, current viewer.Identity, username string) (*models.Profile, error) {
	return s.changeFollow(ctx, current, username, true)
}

// Unfollow makes the current viewer stop following username.
func (s *ProfileService) Unfollow(ctx context.Context, current viewer.Identity, username string) (*models.Profile, error) {
	return s.changeFollow(ctx, current, username, false)
}

func (s *ProfileService) changeFollow(ctx context.Context, current viewer.Identity, username string, follow bool) (*models.Profile, error) {
	var profile models.Profile
	err := s.uow.Do(ctx, repositories.ReadWrite, func(ctx context.Context, st repositories.Stores) error {
		me, err := resolveViewer(ctx, st, current)
		if err != nil {
			return err
		}
		target, err := findUser(ctx, st, username)
		if err != nil {
			return err
		}
		if target.ID == me.ID {
			return ErrInvalidFollow
		}

		if follow {
			err = st.Follows.CreateFollow(ctx, me.ID, target.ID)
		} else {
			err = st.Follows.DeleteFollow(ctx, me.ID, target.ID)
		}
		if err != nil {
			return fmt.Errorf("update follow %d -> %d: %w", me.ID, target.ID, err)
		}

		following, err := st.Follows.IsFollowing(ctx, me.ID, target.ID)
		if err != nil {
			return err
		}
		profile = me.ViewProfile(target)
		profile.Following = following
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Follow graph updated",
		zap.Uint("user_id", current.UserID),
		zap.String("target", username),
		zap.Bool("following", follow),
	)
	return &profile, nil
}

func findUser(ctx context.Context, st repositories.Stores, username string) (*models.User, error) {
	user, err := st.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrEntityNotFound, username)
		}
		return nil, err
	}
	return user, nil
}
