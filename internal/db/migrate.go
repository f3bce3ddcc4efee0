package db

import (
	"fmt"

	"github.com/quatroapp/quatro/internal/models"
	"gorm.io/gorm"
)

// AllModels lists every persisted type, in migration order.
func AllModels() []any {
	return []any{
		&models.Task{},
		&models.TaskBlocker{},
		&models.Subtask{},
		&models.RecurringConfig{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
