package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/recordstore/postgresengine/internal/adapters"
)

const (
	baseTableConfiguration = "configuration"
	baseTableBooks         = "books"
	baseTableBorrowers     = "borrowers"
	baseTableLoans         = "loans"
	baseTableFines         = "fines"
	baseTableJournal       = "circulation_journal"

	logMsgBeginTxFailed       = "failed to begin transaction"
	logMsgCommitTxFailed      = "failed to commit transaction"
	logMsgRollbackTxFailed    = "failed to roll back transaction"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgBuildQueryFailed    = "failed to build sql query"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSQLExecuted         = "executed sql"
	logMsgOperation           = "record store operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrTable              = "table"
	logAttrRecordID           = "record_id"
	logAttrExpectedState      = "expected_state"
	logAttrRowsAffected       = "rows_affected"
	logAttrDurationMS         = "duration_ms"

	metricQueryDuration        = "recordstore_query_duration_seconds"
	metricStatementDuration    = "recordstore_statement_duration_seconds"
	metricDatabaseErrors       = "recordstore_database_errors_total"
	metricConcurrencyConflicts = "recordstore_concurrency_conflicts_total"
	metricLabelOperation       = "operation"
	metricLabelStatus          = "status"
	metricLabelTable           = "table"
	metricLabelConflictType    = "conflict_type"
	operationQuery             = "query"
	operationStatement         = "statement"
	statusSuccess              = "success"
	statusError                = "error"
	conflictTypeConcurrency    = "concurrency"

	dialectPostgres = "postgres"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// Logger interface for SQL query logging, operational messages, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting record store performance and operational metrics.
// Dependency-free so users can bridge to any metrics backend by implementing it.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Store is the Postgres implementation of recordstore.Store. It leverages a
// database adapter and supports customizable logging and table naming, so the
// same engine runs against pgxpool, database/sql, and sqlx connections.
type Store struct {
	db               adapters.DBAdapter
	tablePrefix      string
	logger           Logger
	metricsCollector MetricsCollector
}

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithTablePrefix prefixes every circulation table name, for deployments
// that share a database schema with other applications.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return recordstore.ErrEmptyTablePrefixSupplied
		}

		s.tablePrefix = prefix

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Row counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like rollback failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The collector will receive performance and operational metrics including
// query/statement durations, database errors, and concurrency conflicts.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, recordstore.ErrNilDatabaseConnection
	}

	return applyOptions(Store{db: adapters.NewPGXAdapter(db)}, options)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, recordstore.ErrNilDatabaseConnection
	}

	return applyOptions(Store{db: adapters.NewSQLAdapter(db)}, options)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, recordstore.ErrNilDatabaseConnection
	}

	return applyOptions(Store{db: adapters.NewSQLXAdapter(db)}, options)
}

func applyOptions(s Store, options []Option) (Store, error) {
	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// WithinTx runs fn inside one database transaction, committing when fn
// returns nil and rolling back otherwise.
func (s Store) WithinTx(ctx context.Context, fn func(ctx context.Context, a recordstore.Access) error) error {
	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgBeginTxFailed, logAttrError, beginErr.Error())
		}

		return errors.Join(recordstore.ErrBeginningTxFailed, beginErr)
	}

	if fnErr := fn(ctx, access{tx: tx, engine: s}); fnErr != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			if s.logger != nil {
				s.logger.Warn(logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
			}
		}

		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgCommitTxFailed, logAttrError, commitErr.Error())
		}

		return errors.Join(recordstore.ErrCommittingTxFailed, commitErr)
	}

	return nil
}

func (s Store) configurationTable() string { return s.tablePrefix + baseTableConfiguration }
func (s Store) booksTable() string         { return s.tablePrefix + baseTableBooks }
func (s Store) borrowersTable() string     { return s.tablePrefix + baseTableBorrowers }
func (s Store) loansTable() string         { return s.tablePrefix + baseTableLoans }
func (s Store) finesTable() string         { return s.tablePrefix + baseTableFines }
func (s Store) journalTable() string       { return s.tablePrefix + baseTableJournal }

// executeQuery executes the SQL query on the transaction and returns rows with timing information.
func (s Store) executeQuery(ctx context.Context, tx adapters.DBTx, sqlQuery string) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := tx.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, duration)

	if queryErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		s.recordDurationMetrics(metricQueryDuration, duration, operationQuery, statusError)
		s.recordErrorMetrics(operationQuery)

		return nil, duration, errors.Join(recordstore.ErrQueryingRecordsFailed, queryErr)
	}

	s.recordDurationMetrics(metricQueryDuration, duration, operationQuery, statusSuccess)

	return rows, duration, nil
}

// executeStatement executes the SQL statement on the transaction and returns rows affected.
func (s Store) executeStatement(ctx context.Context, tx adapters.DBTx, sqlQuery string) (
	rowsAffectedInt64,
	error,
) {

	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, duration)

	if execErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		s.recordDurationMetrics(metricStatementDuration, duration, operationStatement, statusError)
		s.recordErrorMetrics(operationStatement)

		return 0, errors.Join(recordstore.ErrExecutingStatementFailed, execErr)
	}

	s.recordDurationMetrics(metricStatementDuration, duration, operationStatement, statusSuccess)

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, errors.Join(recordstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s Store) logQueryWithDuration(sqlQuery string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, s.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (s Store) logOperation(action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Store) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation duration if the metrics collector is configured.
func (s Store) recordDurationMetrics(metricName string, duration time.Duration, operation, status string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			metricLabelOperation: operation,
			metricLabelStatus:    status,
		}
		s.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordErrorMetrics records database errors if the metrics collector is configured.
func (s Store) recordErrorMetrics(operation string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			metricLabelOperation: operation,
			metricLabelStatus:    statusError,
		}
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordConcurrencyConflictMetrics records guarded update conflicts if the metrics collector is configured.
func (s Store) recordConcurrencyConflictMetrics(table string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			metricLabelTable:        table,
			metricLabelConflictType: conflictTypeConcurrency,
		}
		s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
	}
}
