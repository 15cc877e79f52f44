// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventlistener

import "math"

// Task is the abstract waker a Listener installs with an Event: something
// that can be woken, and that knows whether waking it again would be
// redundant with another pending wake. Host integrations (channel-based
// waits, runtime task handles, etc.) implement this; the core and Event
// never depend on any particular scheduler.
type Task interface {
	// Wake notifies whatever is waiting on this Task that it should re-check
	// its condition. Must not block, and must be safe to call from any
	// goroutine, including concurrently with itself.
	Wake()
	// WillWake reports whether waking this Task would have the same effect
	// as waking other. When a listener that already has other installed is
	// registered again with this Task and WillWake returns true, other stays
	// installed and this Task is discarded. Implementations that can't tell
	// should conservatively return false.
	WillWake(other Task) bool
}

// Event is a multi-listener notification primitive: any number of Listeners
// may register with it, and a call to Notify wakes some bounded number of
// them, in FIFO order of registration. Event contains no OS-level
// synchronization primitive — only atomics and a best-effort spin lock — so
// it is safe to use in contexts that can't assume a blocking mutex (see
// doc.go).
//
// The zero value is not usable; construct with New.
type Event struct {
	in *inner
}

// New constructs an Event, applying any supplied Options.
func New(opts ...Option) (*Event, error) {
	cfg, err := resolveEventOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Event{in: newInner(cfg)}, nil
}

// Listen creates a new Listener attached to this Event, occupying a slot (or
// a promise of one, under contention) immediately.
func (e *Event) Listen() *Listener {
	h := e.in.insert(emptyHandle())
	return &Listener{event: e, handle: h}
}

// Notify ensures that at least n listeners are notified, in FIFO order.
// Listeners that are already notified count toward n, so only the shortfall
// is newly notified (none, if n or more already are); if fewer unnotified
// listeners exist than that shortfall, all of them are notified.
func (e *Event) Notify(n int) {
	e.in.notify(n, false)
}

// NotifyAdditional notifies up to n more listeners, in FIFO order, beyond
// however many are already notified, regardless of that count. Listeners
// that are already notified are never selected again; if fewer than n
// unnotified listeners exist, all of them are notified.
func (e *Event) NotifyAdditional(n int) {
	e.in.notify(n, true)
}

// NotifyOne is shorthand for Notify(1).
func (e *Event) NotifyOne() {
	e.in.notify(1, false)
}

// NotifyAll wakes every currently unnotified listener.
func (e *Event) NotifyAll() {
	e.in.notify(math.MaxInt, false)
}

// Notified returns the approximate number of listeners currently notified,
// without taking the spin lock: a caller can check this before deciding
// whether calling Notify at all would be worthwhile. It is lock-free and may
// be stale under concurrent Insert/Notify, but it never under-reports the
// count that was true at some preceding happens-before edge. Once every
// currently registered listener has been notified, the internal shadow
// counter switches to an all-notified sentinel (see inner.go's
// publishNotified); rather than leak that sentinel, Notified reports Len()
// in that case, since "all notified" and "notified count equals total
// listeners" are the same observable fact.
func (e *Event) Notified() int {
	n := e.in.notified.Load()
	if n == math.MaxInt64 {
		return e.Len()
	}
	return int(n)
}

// Len returns the current number of listeners registered with this Event.
// Best-effort/lock-free: may be stale by the time the caller observes it.
func (e *Event) Len() int {
	return int(e.in.length.Load())
}

// Metrics returns a snapshot of this Event's runtime counters. Every field
// reads zero unless the Event was constructed WithMetrics(true).
func (e *Event) Metrics() Metrics {
	return e.in.metrics.snapshot()
}
