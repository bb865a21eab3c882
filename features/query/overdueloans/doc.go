// Package overdueloans implements the query for all active loans past
// their due date, with delinquency recomputed at read time so the numbers
// reflect the moment of the query, not the last write.
package overdueloans
