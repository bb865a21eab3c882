// Package sweepoverdueloans implements the overdue sweep: a batch pass over
// active loans past their due date that have not been notified yet. For
// each loan past the grace period it creates or updates the loan's single
// delay fine, transitions the loan to fined, check-and-sets the notified
// flag, and dispatches at most one notification attempt. Notification
// failures are logged and never abort the surrounding state transition.
//
// The sweep is idempotent: the notified flag gates re-processing and the
// create-or-update step folds repeated runs into the same fine, so running
// it twice over an unmodified loan set produces exactly one delay fine per
// eligible loan and no duplicate notifications. Scheduling (for example a
// daily cron) is an external concern; see cmd/sweeper.
package sweepoverdueloans
