package eventlistener

import "sync/atomic"

// taskWaiting statuses, stored in taskWaiting.status. Slab keys always start
// at 1 (0 is the sentinel slot), so any positive value unambiguously
// identifies a published slot.
const (
	twPending  int32 = 0
	twCanceled int32 = -1
)

// taskWaiting is the shared handle a Queued Listener holds while its Insert
// operation sits in the intake queue. Once the drain that applies the
// Insert runs, it publishes either the allocated slot key or a cancellation
// marker, and the Handle upgrades from Queued to HasNode (or to empty, if
// canceled).
type taskWaiting struct {
	status   atomic.Int32
	canceled atomic.Bool
	task     atomic.Pointer[Task]
}

// register atomically installs task, replacing any previously stored task.
// Called when a Queued listener wants to attach a waker before its Insert
// has been drained.
func (tw *taskWaiting) register(t Task) {
	tw.task.Store(&t)
}

// takeTask atomically removes and returns the stored task, or nil if none.
func (tw *taskWaiting) takeTask() Task {
	p := tw.task.Swap(nil)
	if p == nil {
		return nil
	}
	return *p
}

// publish records the allocated slot key, promoting the handle to HasNode.
func (tw *taskWaiting) publish(key slotKey) {
	tw.status.Store(int32(key))
}

// publishCanceled records that the pending Insert was discarded rather than
// producing a live slot.
func (tw *taskWaiting) publishCanceled() {
	tw.status.Store(twCanceled)
}

// cancel marks this taskWaiting so its eventual Insert drain discards the
// listener instead of leaving it live and unreachable.
func (tw *taskWaiting) cancel() {
	tw.canceled.Store(true)
}

// isCanceled reports whether cancel was called before the Insert drained.
func (tw *taskWaiting) isCanceled() bool {
	return tw.canceled.Load()
}

// resolved reports the published outcome: ok is true once a slot key or a
// cancellation has been published; key is only meaningful when ok is true
// and canceledOut is false.
func (tw *taskWaiting) resolved() (key slotKey, canceledOut bool, ok bool) {
	v := tw.status.Load()
	switch {
	case v == twPending:
		return 0, false, false
	case v == twCanceled:
		return 0, true, true
	default:
		return slotKey(v), false, true
	}
}
