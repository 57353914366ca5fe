package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            batch TEXT NOT NULL,
            expiry DATE NOT NULL,
            brand TEXT NOT NULL,
            supplier TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity >= 0)
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_medicines_name_batch ON medicines (name, batch);`,
	`CREATE TABLE IF NOT EXISTS history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            type TEXT NOT NULL CHECK (type IN ('ADD', 'DISPENSE', 'DELETE')),
            medicine_name TEXT NOT NULL,
            batch TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            person TEXT NOT NULL,
            "timestamp" DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history ("timestamp", id);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
            id SERIAL PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            batch VARCHAR(50) NOT NULL,
            expiry DATE NOT NULL,
            brand VARCHAR(100) NOT NULL,
            supplier VARCHAR(100) NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity >= 0)
        );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_medicines_name_batch ON medicines (name, batch);`,
	`CREATE TABLE IF NOT EXISTS history (
            id SERIAL PRIMARY KEY,
            type VARCHAR(50) NOT NULL CHECK (type IN ('ADD', 'DISPENSE', 'DELETE')),
            medicine_name VARCHAR(100) NOT NULL,
            batch VARCHAR(50) NOT NULL,
            quantity INTEGER NOT NULL,
            person VARCHAR(100) NOT NULL,
            "timestamp" TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history ("timestamp", id);`,
}

// Run creates the medicines and history tables if they are absent. Every
// statement is idempotent so Run is safe on each startup.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "postgres" {
		schema = postgresSchema
	}

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
