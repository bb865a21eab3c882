// Package payfine implements settling a pending fine. Paying the fine that
// blocks a book releases that book; paying any fine whose loan was already
// returned, or whose type is damaged/lost, forces the loan into returned.
//
// Paying a fine that is not pending is rejected with a PreconditionError
// rather than treated as a no-op, so double payments are visible to the
// caller instead of silently swallowed.
package payfine
