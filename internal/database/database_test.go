package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://inv:pw@localhost:5432/inventory", DriverPostgres},
		{"postgresql://inv@db/inventory?sslmode=disable", DriverPostgres},
		{"host=localhost user=inv dbname=inventory sslmode=disable", DriverPostgres},
		{"file:medstock.db?_pragma=busy_timeout(5000)", DriverSQLite},
		{":memory:", DriverSQLite},
		{"", DriverSQLite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DriverFor(tt.dsn), tt.dsn)
	}
}

func TestTestDBHasSchema(t *testing.T) {
	db := NewTestDB(t)

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('medicines', 'history') ORDER BY name`))
	assert.Equal(t, []string{"history", "medicines"}, tables)

	version, err := ServerVersion(context.Background(), db)
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}
