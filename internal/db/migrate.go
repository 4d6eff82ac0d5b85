package db

import (
	"gorm.io/gorm"

	"fdcatalog/internal/models"
)

// AutoMigrate creates or updates the schema for all catalog tables.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.Bank{},
		&models.Plan{},
		&models.RateRule{},
		&models.SheetUpload{},
		&models.UploadError{},
	)
}
