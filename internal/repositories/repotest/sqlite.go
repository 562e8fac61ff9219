// Package repotest provides an in-memory SQLite database and fixtures for
// tests of code built on the GORM stores.
package repotest

import (
	"fmt"
	"testing"

	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite returns a migrated in-memory database. A single connection is
// kept open so every query sees the same database.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repositories.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a unique email derived from username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateArticle inserts an article by author whose slug derives from title.
func CreateArticle(t testing.TB, db *gorm.DB, author *models.User, title string) *models.Article {
	t.Helper()
	article := models.NewArticle(author, title, "description", "body")
	if err := db.Omit("Author").Create(article).Error; err != nil {
		t.Fatalf("failed to create article %q: %v", title, err)
	}
	return article
}

// CreateComment inserts a comment by author on article.
func CreateComment(t testing.TB, db *gorm.DB, article *models.Article, author *models.User, body string) *models.Comment {
	t.Helper()
	c := &models.Comment{ArticleID: article.ID, AuthorID: author.ID, Body: body}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	return c
}

// Follow records that follower follows following.
func Follow(t testing.TB, db *gorm.DB, follower, following *models.User) {
	t.Helper()
	err := db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
	if err != nil {
		t.Fatalf("failed to follow: %v", err)
	}
}

// CountComments returns how many comments article has in the database.
func CountComments(t testing.TB, db *gorm.DB, article *models.Article) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Comment{}).Where("article_id = ?", article.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count comments: %v", err)
	}
	return count
}
