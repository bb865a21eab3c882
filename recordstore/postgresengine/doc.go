// Package postgresengine provides the PostgreSQL implementation of the
// recordstore interfaces.
//
// This package runs every state transition inside one database transaction,
// supporting multiple database adapters (pgx, sql.DB, sqlx) with guarded
// updates for concurrency control: an update carries the state the caller
// read, and zero affected rows means the record moved on concurrently.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Guarded state transitions with concurrency conflict detection
//   - Atomic journal appends inside the owning transaction
//   - Sequence-backed reference code generation
//   - Configurable table prefix and optional logging
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db)
//
//	// With operational logging and a shared schema
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		db,
//		postgresengine.WithTablePrefix("circulation_"),
//		postgresengine.WithLogger(logger),
//	)
//
//	sequences := postgresengine.NewSequenceGenerator(store)
//
//	err := store.WithinTx(ctx, func(ctx context.Context, a recordstore.Access) error {
//		loan, err := a.GetLoan(ctx, loanID)
//		if err != nil {
//			return err
//		}
//		// decide, then write back guarded by the state that was read
//		return a.UpdateLoan(ctx, changed, loan.State)
//	})
package postgresengine
