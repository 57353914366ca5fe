package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DriverFor picks the database/sql driver for a DSN. Postgres URLs and
// key/value strings select lib/pq, anything else is treated as SQLite.
func DriverFor(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// Connect opens a pooled database handle using the provided DSN.
func Connect(dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection serializes stock
		// transactions and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// ServerVersion reports the version string of the connected server.
func ServerVersion(ctx context.Context, db *sqlx.DB) (string, error) {
	query := `SELECT version()`
	if db.DriverName() == DriverSQLite {
		query = `SELECT sqlite_version()`
	}
	var version string
	if err := db.GetContext(ctx, &version, query); err != nil {
		return "", fmt.Errorf("reading server version: %w", err)
	}
	return version, nil
}

// LogVersion logs the server version, mirroring a connectivity check at
// startup.
func LogVersion(ctx context.Context, db *sqlx.DB) {
	version, err := ServerVersion(ctx, db)
	if err != nil {
		logrus.WithError(err).Error("database connectivity check failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"driver":  db.DriverName(),
		"version": version,
	}).Info("connected to database")
}
