// Package adapters provides database abstraction for the Postgres record
// store, supporting pgx pools, standard library sql.DB, and sqlx through
// a common transactional interface.
package adapters
