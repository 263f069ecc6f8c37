package capture

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindPermissionDenied Kind = iota + 1
	KindCaptureCancelled
	KindUploadFailure
	KindLocationFailure
	KindSaveFailure
	KindNothingToRetry
	KindInvalidTransition
	KindMissingArtifact
	KindInvalidMedia
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindCaptureCancelled:
		return "capture cancelled"
	case KindUploadFailure:
		return "upload failure"
	case KindLocationFailure:
		return "location failure"
	case KindSaveFailure:
		return "save failure"
	case KindNothingToRetry:
		return "nothing to retry"
	case KindInvalidTransition:
		return "invalid transition"
	case KindMissingArtifact:
		return "missing artifact"
	case KindInvalidMedia:
		return "invalid media"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf extracts the capture error kind from err, or 0.
func KindOf(err error) Kind {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Kind
	}

	return 0
}
