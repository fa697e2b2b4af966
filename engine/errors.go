package engine

import "github.com/pkg/errors"

// Error kinds from the error-handling design: malformed input and domain
// violations are fatal before search starts; resource-exceeded is recovered
// by emitting the current incumbent; dead-end and cache-miss are ordinary
// control flow and never surface as an error value.

// ErrWidthExceeded is returned by EliminationOrder (and passed on by
// Session.Prepare) when the induced width of the order it builds exceeds
// the configured hard limit.
var ErrWidthExceeded = errors.New("induced width exceeds configured limit")

// ErrDeadlineExceeded names a wall-clock budget spent before a proof of
// optimality. Session.Solve does not return it: a deadline hit is reported
// as Solution.Status TimedOut with a nil error, and the caller still reads
// the (possibly indeterminate) incumbent off the Session.
var ErrDeadlineExceeded = errors.New("wall-clock deadline exceeded")

// ErrInvariantViolated marks an internal consistency failure (e.g. a
// ChildCountAct/ChildCountFull mismatch) that should never happen and, per
// the error-handling design, is allowed to escape the search loop.
var ErrInvariantViolated = errors.New("internal invariant violated")

// wrapf wraps err with a formatted action-describing message, in the style
// every caller of the UAI/evidence/ordering parsers in this package uses so
// the error kind (malformed input vs. domain violation) stays attached to
// where in the pipeline it was raised.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// errorf builds a malformed-input error without an underlying cause.
func errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}
