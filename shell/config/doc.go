// Package config provides configuration helpers for the circulation engine:
// PostgreSQL connections using different drivers (pgx.Pool, sql.DB, sqlx.DB),
// the HTTP listen address, and .env file loading.
//
// All values come from environment variables with sensible local-development
// defaults, so a bare `go run` works against a local Postgres while
// deployments override via their environment.
//
// This package is part of the shell (infrastructure) layer.
package config
