// Package openloan implements the use case of opening a new loan in draft
// state: assigning its reference code, fixing the due timestamp from the
// configured loan period, and running the eligibility guard against the
// borrower's pending fines, the book's blocking fine, and the copy count.
package openloan
