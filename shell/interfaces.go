package shell

import (
	"context"
	"time"
)

// Clock is the single source of current time, injectable for testability.
type Clock interface {
	Now() time.Time
}

// SequenceGenerator produces unique human-readable reference codes for
// loans and fines. The code argument selects the sequence, for example
// "loan" or "fine".
type SequenceGenerator interface {
	Next(ctx context.Context, code string) (string, error)
}

// NotificationSender dispatches an overdue notification to a borrower.
// It is opaque to the engine: failures are caught at the boundary, logged,
// and never propagated into the surrounding state transition. Retry policy,
// if any, belongs to the implementation, not to the callers.
type NotificationSender interface {
	Send(ctx context.Context, notification Notification) error
}

// BookRecord is a normalized book record returned by a metadata lookup.
type BookRecord struct {
	Title         string
	AuthorName    string
	PublisherName string
	ISBN          string
	Pages         int
	PublishedYear int
	Description   string
	Genres        []string
}

// AuthorRecord is a normalized author record returned by a metadata lookup.
type AuthorRecord struct {
	Name      string
	BirthDate string
}

// MetadataLookup fetches normalized bibliographic records from an external
// source. Network-backed and best-effort: failures surface to the caller
// as an ExternalFetchError and never silently corrupt existing data.
// Client design is out of scope here; implementations are wired in by the
// surrounding application.
type MetadataLookup interface {
	FetchBookByISBN(ctx context.Context, isbn string) (BookRecord, error)
	FetchAuthorByName(ctx context.Context, name string) (AuthorRecord, error)
}

// Logger interface for operational logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
