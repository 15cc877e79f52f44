package eventlistener

import "errors"

// ErrNilTask is returned when a nil Task is supplied to an operation that
// requires one (Listener.RegisterTask).
var ErrNilTask = errors.New("eventlistener: nil task")

// ErrClosedEvent is returned by Listener.Wait once the listener has already
// been closed.
var ErrClosedEvent = errors.New("eventlistener: listener closed")

// invariantViolation is panicked (never returned as an error) when the slab
// is asked to remove or register a slot that is not a live listener — the
// sentinel, or a freed slot. This aborts rather than continuing with
// corrupted state. Recovered only by tests.
type invariantViolation struct {
	msg string
}

func (e invariantViolation) Error() string { return "eventlistener: invariant violation: " + e.msg }

func panicInvariant(msg string) {
	panic(invariantViolation{msg: msg})
}
