// Command migrate brings the database schema up to date and exits.
package main

import (
	"dailydiet/internal/config"
	"dailydiet/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	cfg.ConfigureLogger()

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}

	logrus.WithField("driver", cfg.DBDriver).Info("schema is up to date")
}
