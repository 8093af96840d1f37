package db

import (
	"fmt"

	"github.com/charana-seva/charana-backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the server uses. AutoMigrate only
// adds columns and indexes; it never drops data, so running it on every boot
// is safe.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.AdminUser{},
		&models.ActivityLog{},
		&models.Notification{},
		&models.Event{},
		&models.GalleryImage{},
		&models.PDFDocument{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
