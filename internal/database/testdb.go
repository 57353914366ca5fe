package database

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"medstock/m/internal/migrations"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := Connect(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
