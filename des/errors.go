// Package des provides a discrete-event simulation kernel: an event
// calendar, an executive that dispatches events in deterministic order, a
// replication/experiment controller built as a formal state machine, a
// hierarchy of model elements with ordered lifecycle callbacks. The
// event-generator and schedule primitives built on top of it are in
// package des/arrival.
package des

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that callers commonly check with errors.Is.
var (
	// ErrTooManyScans is returned by the conditional-action processor when a
	// single C-phase exceeds its configured scan guard without reaching a
	// fixed point.
	ErrTooManyScans = errors.New("conditional-action processor: too many scans")

	// ErrExceededExecutionTime is returned when a replication's wall-clock
	// budget is exhausted before the event calendar empties.
	ErrExceededExecutionTime = errors.New("replication exceeded maximum wall-clock time")
)

// PreconditionError reports an invalid argument or an operation attempted
// against an invariant the caller should have checked first: negative
// times, non-positive durations, duplicate names, cancelling an
// unscheduled event, and similar caller mistakes. It always fails
// immediately — the kernel never attempts to recover from one.
type PreconditionError struct {
	Code    string
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func newPrecondition(code, format string, args ...any) *PreconditionError {
	return &PreconditionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StateError reports an operation invoked from a state that does not
// permit it: an iterative-process transition called from an illegal
// state, scheduling before initialization or after termination, or
// mutating the model tree while a replication is running.
type StateError struct {
	Code    string
	Message string
}

func (e *StateError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func newStateError(code, format string, args ...any) *StateError {
	return &StateError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// DispatchError wraps an error or panic that propagated out of a user
// action, lifecycle hook, or predicate, annotated with enough context to
// locate the failure: the event, the simulated time it fired at, the
// element that scheduled it (if any), and the replication number. The
// kernel returns it to the caller without logging it; it never swallows
// a dispatch error.
type DispatchError struct {
	// EventID is the id of the event whose action raised the error, or 0
	// if the error originated outside event dispatch (e.g. a lifecycle
	// hook).
	EventID int64

	// Time is the simulated time at which the failure occurred.
	Time float64

	// ElementName is the name of the scheduling element, if any.
	ElementName string

	// Replication is the replication number during which the failure
	// occurred.
	Replication int

	// Cause is the underlying error (or recovered panic, wrapped with
	// fmt.Errorf) that triggered this DispatchError.
	Cause error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch error: replication %d, t=%g, element=%q, event=%d: %v",
		e.Replication, e.Time, e.ElementName, e.EventID, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }
