package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so transport layers can map it to a
// status code without string matching.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindAuthorization
	KindConflict
	KindTransientStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindTransientStore:
		return "transient_store"
	}
	return "unknown"
}

// Error carries a kind, a human-readable reason and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

func Validation(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func NotFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func Authorization(reason string) *Error {
	return &Error{Kind: KindAuthorization, Reason: reason}
}

func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

// TransientStore wraps a storage failure that is safe to retry for
// idempotent operations.
func TransientStore(reason string, cause error) *Error {
	return &Error{Kind: KindTransientStore, Reason: reason, Err: cause}
}

// Wrap attaches a cause to a kinded error without losing the kind.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: cause}
}

// KindOf extracts the kind of err, or ok=false when err carries none.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Reason returns the human-readable reason of err, falling back to
// err.Error() for errors produced outside the engine.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}
