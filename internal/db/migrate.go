package db

import (
	"database/sql" // Dedicated migration connection
	"embed"        // Embedded SQL files
	"errors"       // Error inspection
	"fmt"          // Error wrapping

	"github.com/golang-migrate/migrate/v4"                             // Versioned migrations
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql" // MySQL migration driver
	"github.com/golang-migrate/migrate/v4/source/iofs"                 // embed.FS source
	"github.com/sirupsen/logrus"                                       // Logging

	_ "github.com/go-sql-driver/mysql" // database/sql MySQL driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded MySQL migrations to the database at dsn
func Migrate(dsn string) error {
	// A separate connection: migration files hold several statements
	conn, err := sql.Open("mysql", dsn+"&multiStatements=true")
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer conn.Close()

	driver, err := migratemysql.WithInstance(conn, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("create mysql driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Migration completed.")
	return nil
}
