// Package reportbookdamaged implements reporting the book of a single loan
// as damaged: a damaged-type fine for the book's cost (or the fixed
// fallback) is created, the book is blocked by that fine, and the loan is
// closed into the fined state.
package reportbookdamaged
