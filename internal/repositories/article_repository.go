package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/conduit/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleStore resolves article aggregates by slug and persists changes to
// their comment collections.
type ArticleStore interface {
	// FindBySlug returns the article with exactly this slug together with its
	// author, comments and comment authors, or ErrArticleNotFound.
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	// Save flushes comments added or removed since FindBySlug.
	Save(ctx context.Context, article *models.Article) error
}

// PostgresArticleRepository implements ArticleStore for PostgreSQL
type PostgresArticleRepository struct {
	db   *gorm.DB
	lock bool
}

// NewPostgresArticleRepository creates a new PostgresArticleRepository. With
// lock set the article row is selected FOR UPDATE before it is loaded.
func NewPostgresArticleRepository(db *gorm.DB, lock bool) *PostgresArticleRepository {
	return &PostgresArticleRepository{db: db, lock: lock}
}

// FindBySlug retrieves an article aggregate by slug from PostgreSQL
func (r *PostgresArticleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	db := r.db.WithContext(ctx)

	if r.lock {
		var locked models.Article
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("slug = ?", slug).First(&locked).Error
		if err != nil {
			return nil, translateArticleErr(slug, err)
		}
	}

	var article models.Article
	err := db.
		Preload("Author").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("comments.id ASC")
		}).
		Preload("Comments.Author").
		Where("slug = ?", slug).
		First(&article).Error
	if err != nil {
		return nil, translateArticleErr(slug, err)
	}
	return &article, nil
}

// Save inserts pending comments and deletes removed ones
func (r *PostgresArticleRepository) Save(ctx context.Context, article *models.Article) error {
	db := r.db.WithContext(ctx)

	for _, c := range article.PendingComments() {
		c.ArticleID = article.ID
		if err := db.Omit(clause.Associations).Create(c).Error; err != nil {
			return fmt.Errorf("insert comment on %q: %w", article.Slug, err)
		}
	}

	if removed := article.RemovedCommentIDs(); len(removed) > 0 {
		err := db.Where("article_id = ? AND id IN ?", article.ID, removed).
			Delete(&models.Comment{}).Error
		if err != nil {
			return fmt.Errorf("delete comments on %q: %w", article.Slug, err)
		}
	}

	article.MarkPersisted()
	return nil
}

func translateArticleErr(slug string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %q", ErrArticleNotFound, slug)
	}
	return fmt.Errorf("find article %q: %w", slug, err)
}
