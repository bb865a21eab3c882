// Package core contains the domain model for library circulation:
// loans, fines, books, borrowers and the configuration that drives
// the loan and fine lifecycle.
//
// Everything in this package is pure. Derived values (delinquency days,
// blocked flags) are recomputed from the underlying fields on every call
// instead of being cached, so they always reflect the moment of
// measurement. State transition rules live in the feature packages under
// features/command; this package only provides the types, the derived
// computations and the blocking policy they share.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this
// would be called the 'domain' layer.
package core
