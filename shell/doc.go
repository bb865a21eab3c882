// Package shell holds the imperative-shell plumbing around the pure core:
// collaborator interfaces (clock, sequence generator, notification sender,
// metadata lookup), their default implementations, the boundary error type
// for collaborator failures, and the retry helper command handlers use
// around store transactions.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this
// would be called the 'application' or 'adapter' layer.
package shell
