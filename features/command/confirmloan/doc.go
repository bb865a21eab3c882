// Package confirmloan implements the draft -> active transition of a loan.
// The eligibility guard runs again inside the same transaction that commits
// the transition, so a concurrent fine or loan on the same borrower or book
// cannot slip between check and commit.
package confirmloan
