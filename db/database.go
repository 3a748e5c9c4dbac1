package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"lawsuit_tracker_go/models"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects and tunes the datastore
type Options struct {
	Path        string // local SQLite file, ":memory:" for tests
	RemoteURL   string // libSQL/Turso URL, takes precedence over Path
	AuthToken   string
	Environment string
	Debug       bool
}

// Open sets up the database connection. Local files run in WAL mode with
// foreign keys enforced so the lawsuits.lawyer_id ON DELETE SET NULL rule holds.
func Open(opts Options) (*gorm.DB, error) {
	// Determine log level based on environment
	logLevel := logger.Warn
	if opts.Debug {
		logLevel = logger.Info
	} else if opts.Environment == "production" {
		logLevel = logger.Error
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	if opts.RemoteURL != "" {
		dsn, err := remoteDSN(opts.RemoteURL, opts.AuthToken)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn})
	} else {
		dialector = sqlite.Open(localDSN(opts.Path))
	}

	conn, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.RemoteURL != "" {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		log.Println("Database connection established (libSQL remote)")
	} else {
		log.Println("Database connection established (WAL mode enabled)")
	}
	return conn, nil
}

func localDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
}

func remoteDSN(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("authToken", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// AutoMigrate creates or updates the lawyers and lawsuits tables
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := conn.AutoMigrate(&models.Lawyer{}, &models.Lawsuit{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Ping verifies the connection is usable, used by the health check
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
