package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names understood by this package.
const (
	EnvPostgresDSN       = "CIRCULATION_POSTGRES_DSN"
	EnvHTTPListenAddress = "CIRCULATION_HTTP_LISTEN_ADDRESS"
	EnvTablePrefix       = "CIRCULATION_TABLE_PREFIX"
)

// LoadDotEnv loads a .env file from the working directory when one exists.
// A missing file is not an error; real environment variables always win.
func LoadDotEnv() {
	if _, statErr := os.Stat(".env"); statErr != nil {
		return
	}

	_ = godotenv.Load()
}

// HTTPListenAddress returns the address the HTTP API binds to.
func HTTPListenAddress() string {
	return envOrDefault(EnvHTTPListenAddress, ":8080")
}

// TablePrefix returns the optional shared-schema table prefix, empty by default.
func TablePrefix() string {
	return os.Getenv(EnvTablePrefix)
}

func envOrDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
