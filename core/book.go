package core

import (
	"github.com/google/uuid"
)

// Book represents one title in the catalog with its circulating copy count.
// A book holds a non-owning reference to at most one blocking fine; while
// that reference is set the book cannot be loaned.
type Book struct {
	ID             uuid.UUID
	Title          string
	AuthorID       uuid.UUID
	CopyCount      int
	Cost           float64
	BlockingFineID *uuid.UUID
}

// Blocked reports whether the book is currently blocked by a damaged/lost fine.
// Derived from the blocking fine reference, never stored independently.
func (b Book) Blocked() bool {
	return b.BlockingFineID != nil
}

// BlockedBy reports whether the given fine is the one currently blocking this book.
func (b Book) BlockedBy(fineID uuid.UUID) bool {
	return b.BlockingFineID != nil && *b.BlockingFineID == fineID
}
