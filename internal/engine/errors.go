// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure so callers can distinguish the
// failure classes without parsing messages.
type Kind string

const (
	// KindValidation covers bad input: unknown patient, invalid report
	// type or format, or an already-busy engine. Detected before any
	// external call.
	KindValidation Kind = "validation"

	// KindDataInsufficient marks degraded-but-successful conditions:
	// empty corpus buckets or zero test results. Never fatal on its own.
	KindDataInsufficient Kind = "data_insufficient"

	// KindService means the external generation call failed after
	// exhausting retries. No artifact is written.
	KindService Kind = "service"

	// KindRender means document production failed beyond the recoverable
	// per-chart notices.
	KindRender Kind = "render"

	// KindIO means an artifact could not be persisted or read.
	KindIO Kind = "io"
)

// Error is a classified request failure with a human-readable message and
// the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds a classified error.
func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// ErrNotFound is returned by repositories when a record is absent.
var ErrNotFound = errors.New("not found")
