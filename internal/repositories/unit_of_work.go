package repositories

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrUserNotFound    = errors.New("user not found")
)

// TxMode selects the kind of transaction a unit of work opens.
type TxMode int

const (
	ReadOnly TxMode = iota
	ReadWrite
)

// Stores are the repositories bound to a single unit of work. They must not
// be used after the unit of work returns.
type Stores struct {
	Articles ArticleStore
	Users    UserStore
	Follows  FollowRepository
}

// UnitOfWork runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, mode TxMode, fn func(ctx context.Context, s Stores) error) error
}

// GormUnitOfWork implements UnitOfWork on a GORM connection.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, mode TxMode, fn func(ctx context.Context, s Stores) error) error {
	opts := &sql.TxOptions{ReadOnly: mode == ReadOnly}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Stores{
			Articles: NewPostgresArticleRepository(tx, mode == ReadWrite),
			Users:    NewPostgresUserRepository(tx),
			Follows:  NewPostgresFollowRepository(tx),
		})
	}, opts)
}
