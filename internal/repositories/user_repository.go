package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/conduit/backend/internal/models"
	"gorm.io/gorm"
)

// UserStore defines the interface for user data operations
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// FindByID loads the user together with the ids of the users it follows.
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// PostgresUserRepository implements UserStore for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID retrieves a user and its followed set by ID from PostgreSQL
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateUserErr(fmt.Sprintf("id %d", id), err)
	}

	ids, err := NewPostgresFollowRepository(r.db).GetFollowingIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load followed set of user %d: %w", id, err)
	}
	user.FollowingIDs = ids
	return &user, nil
}

// FindByIDs retrieves users by ID without their followed sets
func (r *PostgresUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByUsername retrieves a user by username from PostgreSQL
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateUserErr(fmt.Sprintf("username %q", username), err)
	}
	return &user, nil
}

// FindByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, translateUserErr("firebase uid", err)
	}
	return &user, nil
}

func translateUserErr(key string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, key)
	}
	return fmt.Errorf("find user by %s: %w", key, err)
}
