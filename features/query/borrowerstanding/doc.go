// Package borrowerstanding implements the query for one borrower's
// standing: their fines, the pending count and total, and the derived
// blocked-for-loans flag, recomputed from the fine set on every read.
package borrowerstanding
