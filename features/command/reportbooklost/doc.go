// Package reportbooklost implements reporting the book of a single loan as
// lost. It mirrors the damaged report exactly except for the fine type: a
// lost-type fine for the book's cost (or the fixed fallback) is created,
// the book is blocked by that fine, and the loan is closed into fined.
package reportbooklost
