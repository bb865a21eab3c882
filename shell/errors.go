package shell

import (
	"errors"
)

// ErrNoMetadataLookup is returned when no metadata lookup collaborator is wired in.
var ErrNoMetadataLookup = errors.New("no metadata lookup collaborator configured")

// ExternalFetchError represents a failure of a boundary collaborator
// (metadata lookup, notification delivery). It is caught at the boundary:
// for metadata lookups it surfaces as a user-visible error aborting only
// that lookup; for notifications it is logged and the overdue sweep
// continues unaffected.
type ExternalFetchError struct {
	Collaborator string
	Cause        error
}

// NewExternalFetchError wraps a collaborator failure.
func NewExternalFetchError(collaborator string, cause error) *ExternalFetchError {
	return &ExternalFetchError{Collaborator: collaborator, Cause: cause}
}

func (e *ExternalFetchError) Error() string {
	return "external fetch failed (" + e.Collaborator + "): " + e.Cause.Error()
}

func (e *ExternalFetchError) Unwrap() error {
	return e.Cause
}

// IsExternalFetchError reports whether err is (or wraps) an ExternalFetchError.
func IsExternalFetchError(err error) bool {
	var target *ExternalFetchError
	return errors.As(err, &target)
}
