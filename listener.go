// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventlistener

import (
	"context"
	"sync"
)

// Listener is a single registration with an Event, created by Event.Listen.
// A Listener is meant to be owned and waited on by a single goroutine at a
// time — like the core it wraps, it has no synchronization of its own
// beyond what's needed to make Close safe to call from a deferred statement
// after Wait returns (or from another goroutine, as an abandon signal).
type Listener struct {
	event *Event

	mu     sync.Mutex
	handle *Handle
}

// chanTask is the Task implementation Listener.Wait installs: a one-shot
// channel closed by Wake. A fresh chanTask is used on every iteration of
// Wait's retry loop, so a channel closed by a stale registration (e.g. an
// opWaiting wake that only meant "retry your register call") is never
// mistaken for the real notification on a later iteration.
type chanTask struct {
	ch        chan struct{}
	closeOnce sync.Once
}

func newChanTask() *chanTask {
	return &chanTask{ch: make(chan struct{})}
}

func (t *chanTask) Wake() {
	t.closeOnce.Do(func() { close(t.ch) })
}

// WillWake reports true only for the exact same chanTask instance: distinct
// Wait calls never install interchangeable wakers.
func (t *chanTask) WillWake(other Task) bool {
	o, ok := other.(*chanTask)
	return ok && o == t
}

// Wait blocks until this Listener's Event notifies it, the listener was
// already notified before Wait was called, or ctx is done. A nil ctx
// panics.
//
// On ctx cancellation, Wait removes the listener (propagating any
// notification it may have raced into consuming, so it isn't lost) before
// returning ctx.Err().
func (l *Listener) Wait(ctx context.Context) error {
	if ctx == nil {
		panic("eventlistener: nil context")
	}

	for {
		l.mu.Lock()
		if l.handle.state == handleEmpty {
			l.mu.Unlock()
			return ErrClosedEvent
		}

		task := newChanTask()
		h, res := l.event.in.register(l.handle, task)
		l.handle = h
		l.mu.Unlock()

		if res != nil && *res {
			return nil
		}

		select {
		case <-task.ch:
			continue
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		}
	}
}

// RegisterTask installs task against this Listener directly, bypassing
// Wait's internal channel-based Task. Intended for host integrations that
// already have their own Task implementation (e.g. a runtime's own waker)
// and want to drive registration/retry themselves instead of calling Wait.
//
// Returns true if the listener was already notified — the notification is
// now consumed, task was never installed, and this Listener is closed.
// Returns false if task was installed (or a retry is pending); the caller
// should wait for task.Wake() and call RegisterTask again.
func (l *Listener) RegisterTask(task Task) (bool, error) {
	if task == nil {
		return false, ErrNilTask
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle.state == handleEmpty {
		return false, ErrClosedEvent
	}

	h, res := l.event.in.register(l.handle, task)
	l.handle = h
	return res != nil && *res, nil
}

// Close abandons this Listener, removing it from its Event if it still
// occupies a slot (or canceling its pending insertion if it doesn't yet).
// Safe to call multiple times, and safe to call even if Wait never ran.
//
// propagate is always true: Close can't know whether a concurrent Notify
// raced the removal and was about to be consumed by this listener, so any
// notification it was holding is redelivered rather than lost.
func (l *Listener) Close() {
	l.mu.Lock()
	h := l.handle
	l.handle = emptyHandle()
	l.mu.Unlock()

	if h == nil || h.state == handleEmpty {
		return
	}
	l.event.in.remove(h, true)
}
