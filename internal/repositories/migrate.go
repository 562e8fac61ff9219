package repositories

import (
	"github.com/anonto42/conduit/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables owned by the GORM stores.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Article{},
		&models.Comment{},
	)
}
