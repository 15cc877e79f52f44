package eventlistener

import "sync/atomic"

// opNode is a deferred operation descriptor, applied against the slab by
// whichever goroutine is currently draining the intake queue.
type opNode interface {
	// apply mutates s and returns any tasks that must be woken once the
	// caller's lock is released.
	apply(s *slab) []Task
}

// queueNode is a single intake-queue element: an opNode plus the intrusive
// next pointer used by the lock-free stack.
type queueNode struct {
	next *queueNode
	op   opNode
}

// intakeQueue is a lock-free, CAS-pushed, singly-linked stack of deferred
// operations. Pushes may happen concurrently from any number of goroutines;
// drains happen one-at-a-time, by whichever goroutine currently holds the
// spinMutex.
//
// Drain order is LIFO (stack pop order), not push order: only the slab's
// own head/tail/start chain carries a FIFO obligation for listener
// notification, and that is preserved regardless of the order in which
// queued ops are applied, since each op's effect on the chain is
// self-contained. A push that races the final drain is safe by
// construction: it either lands in the list the drainer swaps out, or it
// becomes the head of a new list the next locker will drain — it can never
// be silently dropped.
type intakeQueue struct {
	_    [sizeOfCacheLine]byte
	head atomic.Pointer[queueNode]
	_    [sizeOfCacheLine - 8]byte
}

// push adds n to the queue. Safe for concurrent use.
func (q *intakeQueue) push(n *queueNode) {
	for {
		old := q.head.Load()
		n.next = old
		if q.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// drain atomically takes the entire current queue, leaving it empty, and
// returns its head (a linked list in LIFO order). Must be drained to
// emptiness by the caller before releasing the spin lock.
func (q *intakeQueue) drain() *queueNode {
	return q.head.Swap(nil)
}

// opInsert allocates a new listener once the drain runs, publishing the
// resulting key (or cancellation) back to tw.
type opInsert struct {
	tw *taskWaiting
}

func (o *opInsert) apply(s *slab) []Task {
	if o.tw.isCanceled() {
		// A remove() issued while still Queued doesn't leak the listener
		// the drain is about to create — it's allocated and immediately
		// removed (non-propagating; a Created listener was never notified,
		// so nothing to propagate).
		key := s.insert(ListenerState{kind: stateCreated})
		s.remove(key, false)
		o.tw.publishCanceled()
		return nil
	}

	key := s.insert(ListenerState{kind: stateCreated})
	o.tw.publish(key)

	// A task may have been registered on tw between the caller observing
	// Queued and this drain running; pick it up now so it isn't stranded.
	if t := o.tw.takeTask(); t != nil {
		return []Task{t}
	}
	return nil
}

// opRemove frees a listener slot, propagating its notification if
// requested and applicable.
type opRemove struct {
	key       slotKey
	propagate bool
}

func (o *opRemove) apply(s *slab) []Task {
	_, woken := s.remove(o.key, o.propagate)
	return woken
}

// opNotify applies a deferred Notify(n, additional) call.
type opNotify struct {
	n          int
	additional bool
}

func (o *opNotify) apply(s *slab) []Task {
	return s.notify(o.n, o.additional)
}

// opWaiting wakes task once the current drain completes, so a caller whose
// register() call hit a busy lock can reattempt it.
type opWaiting struct {
	task Task
}

func (o *opWaiting) apply(*slab) []Task {
	return []Task{o.task}
}
