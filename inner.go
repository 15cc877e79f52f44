package eventlistener

import (
	"math"
	"sync/atomic"
	"time"
)

// inner is the coordinator: it dispatches every public call along either
// the fast path (spin lock held, mutate the slab directly) or the slow path
// (encode the operation as an intake-queue node), and drains the intake
// queue to emptiness before releasing the lock on every fast-path call.
type inner struct {
	mu    *spinMutex
	queue intakeQueue
	slab  slab

	// notified is a shadow counter: slab.notified while it's less than
	// slab.len, else math.MaxInt64 ("every current listener is notified").
	// Readers may load this without taking the lock.
	notified atomic.Int64
	// length mirrors slab.len for Event.Len's lock-free, best-effort read.
	length atomic.Int64

	logger  Logger
	metrics *metricsCounters
}

func newInner(cfg *eventOptions) *inner {
	in := &inner{
		mu:     newSpinMutex(cfg.spinLimit),
		slab:   newSlab(),
		logger: cfg.logger,
	}
	if cfg.metricsEnabled {
		in.metrics = &metricsCounters{}
	}
	in.publishNotified()
	return in
}

// runLocked executes op (if non-nil) against the slab, then drains the
// intake queue to emptiness, then publishes the shadow counters — all while
// the caller holds mu. It returns every task that must be woken once the
// caller unlocks. The caller is responsible for calling mu.Unlock() and then
// waking the returned tasks; waking must never happen while the lock is
// held, or a woken task resuming synchronously could re-enter and block on
// the very lock its waker is still holding.
func (in *inner) runLocked(opName string, op func(s *slab) []Task) []Task {
	var woken []Task
	if op != nil {
		woken = append(woken, op(&in.slab)...)
	}

	var drained int
	for list := in.queue.drain(); list != nil; list = in.queue.drain() {
		for node := list; node != nil; node = node.next {
			woken = append(woken, node.op.apply(&in.slab)...)
			drained++
		}
	}
	in.metrics.recordDrainBatch(drained)
	in.logDrain(opName, drained, false)

	in.publishNotified()
	return woken
}

// publishNotified updates the lock-free shadow counters from the current
// (locked) slab state.
func (in *inner) publishNotified() {
	if in.slab.notified < in.slab.len {
		in.notified.Store(int64(in.slab.notified))
	} else {
		in.notified.Store(math.MaxInt64)
	}
	in.length.Store(int64(in.slab.len))
}

// wakeAll wakes every task in woken. Always called after mu has been
// released.
func (in *inner) wakeAll(woken []Task) {
	for _, t := range woken {
		if t != nil {
			t.Wake()
		}
	}
}

func (in *inner) logDrain(op string, drained int, contended bool) {
	if !in.logger.IsEnabled(LevelDebug) {
		return
	}
	in.logger.Log(LogEntry{
		Level:   LevelDebug,
		Message: "eventlistener: " + op,
		Time:    time.Now(),
		Fields: map[string]any{
			"drained":   drained,
			"contended": contended,
		},
	})
}

// insert allocates a new listener. h must be an empty handle; insert is
// idempotent if h already refers to a listener.
func (in *inner) insert(h *Handle) *Handle {
	if h.state != handleEmpty {
		return h
	}

	if in.mu.TryLock() {
		in.metrics.fastAcquire()
		var key slotKey
		woken := in.runLocked("insert", func(s *slab) []Task {
			key = s.insert(ListenerState{kind: stateCreated})
			return nil
		})
		in.mu.Unlock()
		in.wakeAll(woken)
		return &Handle{state: handleNode, key: key}
	}

	in.metrics.slowDeferral()
	in.logger.Log(LogEntry{Level: LevelDebug, Message: "eventlistener: insert deferred to intake queue", Time: time.Now()})
	tw := &taskWaiting{}
	in.queue.push(&queueNode{op: &opInsert{tw: tw}})
	return &Handle{state: handleQueued, tw: tw}
}

// remove empties h, returning the listener's final state if it was resolved
// synchronously (fast path), or nil if the removal was deferred to the
// intake queue (slow path) or h was already empty/still queued.
//
// propagate should be true whenever the caller cannot be sure its listener
// never consumed a notification (see Listener.Close), so a lost wakeup
// doesn't occur.
func (in *inner) remove(h *Handle, propagate bool) (*ListenerState, *Handle) {
	switch h.state {
	case handleEmpty:
		return nil, h

	case handleQueued:
		// If a drain has already applied the Insert, remove the slot it
		// published like any other HasNode handle.
		if r := h.resolve(); r.state != handleQueued {
			return in.remove(r, propagate)
		}
		// The pending Insert hasn't been drained yet; there is no slab
		// entry to remove synchronously. Mark it canceled so the eventual
		// drain discards the listener instead of leaking it (see DESIGN.md's
		// Open Question decisions), then re-check in case a drain published
		// a slot before it observed the flag.
		h.tw.cancel()
		if r := h.resolve(); r.state == handleNode {
			return in.remove(r, propagate)
		}
		return nil, emptyHandle()

	case handleNode:
		key := h.key
		if in.mu.TryLock() {
			in.metrics.fastAcquire()
			var state ListenerState
			woken := in.runLocked("remove", func(s *slab) []Task {
				var w []Task
				state, w = s.remove(key, propagate)
				return w
			})
			in.mu.Unlock()
			in.wakeAll(woken)
			return &state, emptyHandle()
		}

		in.metrics.slowDeferral()
		in.logger.Log(LogEntry{Level: LevelDebug, Message: "eventlistener: remove deferred to intake queue", Time: time.Now()})
		in.queue.push(&queueNode{op: &opRemove{key: key, propagate: propagate}})
		return nil, emptyHandle()

	default:
		return nil, h
	}
}

// notify applies a notification for up to n listeners. If additional is
// true, n more listeners are notified beyond however many already are;
// otherwise notify ensures at least the first n (in insertion order) are
// notified, a no-op if that's already the case.
func (in *inner) notify(n int, additional bool) {
	if in.mu.TryLock() {
		in.metrics.fastAcquire()
		woken := in.runLocked("notify", func(s *slab) []Task {
			return s.notify(n, additional)
		})
		in.mu.Unlock()
		in.wakeAll(woken)
		return
	}

	in.metrics.slowDeferral()
	in.logger.Log(LogEntry{Level: LevelDebug, Message: "eventlistener: notify deferred to intake queue", Time: time.Now()})
	in.queue.push(&queueNode{op: &opNotify{n: n, additional: additional}})
}

// register attempts to associate task with h's listener. It returns the
// (possibly upgraded) handle to use from now on, and:
//   - a non-nil *true: the listener was already notified; the notification
//     is now consumed and h is empty.
//   - a non-nil *false: task was installed (or already was); the caller
//     should wait for task.Wake().
//   - nil: registration is still pending, and the caller should call
//     register again once task is woken. If h was Queued and couldn't be
//     resolved yet, task is stored on h's taskWaiting and woken when the
//     drain applies the Insert; if the spin lock was contended, a Waiting
//     node has been queued so task is woken once the current drain
//     completes.
func (in *inner) register(h *Handle, task Task) (*Handle, *bool) {
	switch h.state {
	case handleEmpty:
		return h, nil

	case handleQueued:
		resolved := h.resolve()
		if resolved.state == handleQueued {
			// Still pending: attach task directly to the shared handle so
			// it's picked up whenever the drain does run. The drain may
			// have raced us between the resolve() above and this
			// register call, so re-resolve immediately after: if it already
			// published, fall through to registering against the real slot
			// instead of leaving task stranded on a tw nobody reads again.
			h.tw.register(task)
			if resolved = h.resolve(); resolved.state == handleQueued {
				return h, nil
			}
		}
		return in.register(resolved, task)

	case handleNode:
		key := h.key
		if in.mu.TryLock() {
			in.metrics.fastAcquire()
			var consumed bool
			woken := in.runLocked("register", func(s *slab) []Task {
				consumed = s.register(key, task)
				return nil
			})
			in.mu.Unlock()
			in.wakeAll(woken)
			if consumed {
				t := true
				return emptyHandle(), &t
			}
			f := false
			return h, &f
		}

		in.metrics.slowDeferral()
		in.logger.Log(LogEntry{Level: LevelDebug, Message: "eventlistener: register deferred to intake queue", Time: time.Now()})
		in.queue.push(&queueNode{op: &opWaiting{task: task}})
		return h, nil

	default:
		return h, nil
	}
}
