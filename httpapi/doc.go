// Package httpapi exposes the circulation engine over HTTP. It is a thin
// boundary: JSON in, feature command/query handlers in the middle, JSON out.
// All business rules live in the feature packages; this package only maps
// transport concerns, including the error taxonomy to status codes
// (validation 422, precondition 409, not found 404, external fetch 502).
package httpapi
