package main

import (
	"finance_tracker/internal/config" // Custom import path (Config)
	"finance_tracker/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	switch cfg.DBDriver {
	case config.DriverMySQL:
		// Versioned SQL migrations embedded in the binary
		if err := db.Migrate(cfg.MySQLDSN()); err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}
	case config.DriverSQLite:
		// Opening an SQLite store brings its schema up to date
		store, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}
		_ = db.Close(store)
		logrus.Info("Migration completed.")
	default:
		logrus.Fatalf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
