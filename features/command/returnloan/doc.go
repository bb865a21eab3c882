// Package returnloan implements the return of an active loan. An on-time
// return transitions the loan to returned with the fine flag cleared; a
// late return computes the delinquency in whole days, creates or updates
// the loan's single pending delay fine, and transitions the loan to fined.
package returnloan
