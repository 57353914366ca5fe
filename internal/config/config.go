package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds application configuration values.
type Config struct {
	DatabaseDSN string
	HTTPPort    string
	CORSOrigins []string
	LogLevel    string
	SeedCSV     string
}

const (
	defaultDSN  = "file:medstock.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	defaultPort = "5000"
)

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = defaultPort
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		logrus.Warnf("invalid HTTP_PORT value %q, defaulting to %s", port, defaultPort)
		port = defaultPort
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Config{
		DatabaseDSN: dsn,
		HTTPPort:    port,
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS"), "*"),
		LogLevel:    level,
		SeedCSV:     strings.TrimSpace(os.Getenv("SEED_CSV")),
	}
}

func splitList(raw, fallback string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}
