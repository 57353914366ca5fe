package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_DSN", "HTTP_PORT", "CORS_ORIGINS", "LOG_LEVEL", "SEED_CSV"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.SeedCSV)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://inv:secret@db:5432/inventory?sslmode=disable")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://pharmacy.example ,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED_CSV", " assets/stock.csv ")

	cfg := Load()

	assert.Equal(t, "postgres://inv:secret@db:5432/inventory?sslmode=disable", cfg.DatabaseDSN)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, []string{"http://localhost:3000", "https://pharmacy.example"}, cfg.CORSOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "assets/stock.csv", cfg.SeedCSV)
}

func TestLoadRejectsNonNumericPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "http")

	assert.Equal(t, "5000", Load().HTTPPort)
}
