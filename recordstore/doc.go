// Package recordstore defines the persistent-state boundary of the
// circulation engine: a transactional Store and the row operations
// available inside one unit of work.
//
// The engine assumes a surrounding transactional store that serializes
// concurrent mutation of the same loan, fine, book or borrower row. State
// transitions are written with guarded updates (expected current state in
// the WHERE clause); a guard that matches no row surfaces
// ErrConcurrencyConflict, which is the commit-time re-verification of
// every eligibility check that was made earlier in the same transaction.
package recordstore
