package migrations

import (
	"fmt"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the tables for every persisted model.
func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running migrations...")

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to migrate User: %w", err)
	}

	if err := db.AutoMigrate(&models.Category{}); err != nil {
		return fmt.Errorf("failed to migrate Category: %w", err)
	}

	if err := db.AutoMigrate(&models.EventMetadata{}); err != nil {
		return fmt.Errorf("failed to migrate EventMetadata: %w", err)
	}

	logrus.Info("Migrations completed successfully")
	return nil
}
