// Package cancelfine implements cancelling a pending fine. Cancellation
// removes the fine from the pending count the blocking policy derives from;
// it has no further side effects on books or loans.
package cancelfine
