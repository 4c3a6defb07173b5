package db

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every persisted type. Foreign keys are created RESTRICT, so
// deleting a referenced row fails unless its dependents are removed first.
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.Review{},
		&model.Order{},
		&model.OrderProduct{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
