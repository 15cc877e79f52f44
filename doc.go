// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package eventlistener provides a multi-listener notification primitive
// ([Event]) for coordinating goroutines without handing out an
// [sync.Mutex]/[sync.Cond] pair per waiter: any number of goroutines can
// register a [Listener], wait on it, and be woken in strict FIFO order of
// registration when the [Event] is notified.
//
// # Architecture
//
// The hard part, and the bulk of this package, is the internal listener
// collection and the concurrency protocol around it:
//
//   - A spin mutex is a best-effort, non-blocking try-lock. It never parks a
//     goroutine; on contention it spins a bounded number of times and then
//     gives up.
//   - An intake queue is a lock-free MPSC stack of deferred operations. When
//     the spin lock can't be acquired, the operation is pushed here instead
//     of blocking.
//   - Whichever goroutine holds the spin lock drains the entire intake queue
//     into the slab before releasing it, so no operation is ever stranded
//     for more than one lock-release cycle.
//   - The slab itself is a slice-backed arena threaded with an intrusive
//     doubly-linked FIFO (indices, not pointers) plus a free list, giving
//     O(1) insert/remove/notify without per-listener heap allocation beyond
//     the slab's own growth.
//
// # Thread Safety
//
//   - [Event] is safe for concurrent use from any goroutine.
//   - No goroutine is ever blocked inside the core: the spin lock's try-lock
//     either succeeds immediately or the caller falls back to the intake
//     queue. Waking a waiter's task always happens after the spin lock has
//     been released.
//   - [Listener.Wait] is the one place this package suspends a goroutine,
//     and it does so with a plain channel receive gated by the caller's
//     [context.Context], not by anything inside the core.
//
// # Usage
//
//	ev, err := eventlistener.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	l := ev.Listen()
//	defer l.Close()
//
//	go func() {
//		ev.NotifyOne()
//	}()
//
//	if err := l.Wait(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// # Error Types
//
//   - [ErrNilTask]: returned by [Listener.RegisterTask] when given a nil task.
//   - [ErrClosedEvent]: returned by [Listener.Wait] once the listener has
//     already been closed.
//
// Both satisfy the standard [error] interface and are intended for matching
// via [errors.Is].
package eventlistener
