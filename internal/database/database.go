// Package database opens the GORM connection and evolves the schema.
package database

import (
	"fmt"
	"strings"

	"dailydiet/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Unique index violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate creates the users and diet tables and applies schema evolution steps.
func Migrate(db *gorm.DB) error {
	if err := widenDietDate(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(&models.User{}, &models.Diet{}); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	logrus.Info("database migration completed")
	return nil
}

// widenDietDate converts a date-only diet.date column into a date-time column.
func widenDietDate(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&models.Diet{}) {
		return nil
	}

	columns, err := m.ColumnTypes(&models.Diet{})
	if err != nil {
		return fmt.Errorf("failed to inspect diet columns: %w", err)
	}
	for _, col := range columns {
		if col.Name() != "date" || !strings.EqualFold(col.DatabaseTypeName(), "date") {
			continue
		}
		logrus.Info("widening diet.date from date to datetime")
		if err := m.AlterColumn(&models.Diet{}, "Date"); err != nil {
			return fmt.Errorf("failed to widen diet.date: %w", err)
		}
	}
	return nil
}
