package eventlistener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlab_InsertThenRemoveMiddleEntry(t *testing.T) {
	s := newSlab()
	k1 := s.insert(ListenerState{kind: stateCreated})
	k2 := s.insert(ListenerState{kind: stateCreated})
	k3 := s.insert(ListenerState{kind: stateCreated})

	require.EqualValues(t, 1, k1)
	require.EqualValues(t, 2, k2)
	require.EqualValues(t, 3, k3)
	assert.Equal(t, 3, s.len)
	assert.EqualValues(t, 1, s.head)
	assert.EqualValues(t, 3, s.tail)
	assert.EqualValues(t, 1, s.start)
	assert.Equal(t, 0, s.notified)
	assert.EqualValues(t, 4, s.firstEmpty)

	state, woken := s.remove(k2, false)
	assert.Empty(t, woken)
	assert.Equal(t, stateCreated, state.kind)
	assert.Equal(t, 2, s.len)
	assert.Equal(t, entryEmpty, s.entries[k2].kind)
	assert.EqualValues(t, 4, s.entries[k2].nextEmpty)
	assert.EqualValues(t, k2, s.firstEmpty)
	assert.EqualValues(t, k3, s.entries[k1].next)
	assert.EqualValues(t, k1, s.entries[k3].prev)
}

func TestSlab_NotifyMarksEntryThenRemoveReportsNotified(t *testing.T) {
	s := newSlab()
	k1 := s.insert(ListenerState{kind: stateCreated})
	s.insert(ListenerState{kind: stateCreated})
	s.insert(ListenerState{kind: stateCreated})

	woken := s.notify(1, true)
	assert.Empty(t, woken, "no tasks were registered, nothing to wake")
	assert.Equal(t, 1, s.notified)
	assert.EqualValues(t, 2, s.start)
	assert.Equal(t, stateNotified, s.entries[k1].state.kind)
	assert.True(t, s.entries[k1].state.additional)

	state, _ := s.remove(k1, false)
	assert.Equal(t, stateNotified, state.kind)
	assert.Equal(t, 0, s.notified)
}

func TestSlab_RegisterThenNotifyWakesRegisteredTask(t *testing.T) {
	s := newSlab()
	k1 := s.insert(ListenerState{kind: stateCreated})
	k2 := s.insert(ListenerState{kind: stateCreated})
	k3 := s.insert(ListenerState{kind: stateCreated})

	ft := &fakeTask{}
	consumed := s.register(k2, ft)
	assert.False(t, consumed)
	assert.Equal(t, stateTask, s.entries[k2].state.kind)

	woken := s.notify(2, false)
	require.Len(t, woken, 1)
	assert.Same(t, ft, woken[0])
	assert.Equal(t, 2, s.notified)
	assert.EqualValues(t, k3, s.start)
	_ = k1

	consumed = s.register(k2, ft)
	assert.True(t, consumed, "re-registering on an already-notified listener consumes it")
	assert.Equal(t, entryEmpty, s.entries[k2].kind)
}

func TestSlab_RemoveNotifiedEntryPropagatesToNextListener(t *testing.T) {
	s := newSlab()
	k1 := s.insert(ListenerState{kind: stateCreated})
	k2 := s.insert(ListenerState{kind: stateCreated})
	k3 := s.insert(ListenerState{kind: stateCreated})

	ft := &fakeTask{}
	s.register(k2, ft)

	woken := s.notify(1, false)
	assert.Empty(t, woken, "k1 notified, but k1 has no registered task")

	state, woken := s.remove(k1, false)
	assert.Equal(t, stateNotified, state.kind)
	assert.Empty(t, woken)
	assert.Equal(t, 0, s.notified)
	assert.EqualValues(t, k2, s.head)
	assert.EqualValues(t, k2, s.start)

	woken = s.notify(1, false)
	require.Len(t, woken, 1)
	assert.Same(t, ft, woken[0])

	state, woken = s.remove(k2, true)
	assert.Equal(t, stateNotified, state.kind)
	assert.Equal(t, 1, s.notified, "propagation re-notified k3")
	assert.EqualValues(t, 0, s.start, "k3 was the last listener, fully consumed the propagated notify")
	assert.EqualValues(t, k3, s.head)
	assert.EqualValues(t, k3, s.tail)
}

func TestSlab_Notify_ClampsToUnnotifiedCount(t *testing.T) {
	s := newSlab()
	s.insert(ListenerState{kind: stateCreated})
	s.insert(ListenerState{kind: stateCreated})

	s.notify(5, false)
	assert.Equal(t, 2, s.notified, "notify(n, false) never exceeds len")

	woken := s.notify(1, false)
	assert.Empty(t, woken, "already-notified count >= 1, so this is a no-op")
	assert.Equal(t, 2, s.notified)
}

func TestSlab_Notify_AdditionalAlwaysAdvances(t *testing.T) {
	s := newSlab()
	s.insert(ListenerState{kind: stateCreated})
	s.insert(ListenerState{kind: stateCreated})

	s.notify(1, false)
	assert.Equal(t, 1, s.notified)
	s.notify(1, true)
	assert.Equal(t, 2, s.notified, "notify(1, true) always bumps one more regardless of prior notified count")
}

func TestSlab_InsertReusesFreedSlot(t *testing.T) {
	s := newSlab()
	k1 := s.insert(ListenerState{kind: stateCreated})
	s.remove(k1, false)
	k2 := s.insert(ListenerState{kind: stateCreated})
	assert.Equal(t, k1, k2, "freed slots are reused before growing the backing slice")
}

func TestSlab_Remove_PanicsOnNonListenerEntry(t *testing.T) {
	s := newSlab()
	assert.Panics(t, func() {
		s.remove(0, false) // entries[0] is the sentinel
	})
}

func TestSlab_Register_PrefersExistingTaskWhenEquivalent(t *testing.T) {
	s := newSlab()
	k := s.insert(ListenerState{kind: stateCreated})
	f1 := &fakeTask{}
	s.register(k, f1)

	// A task that reports it would wake the same way as f1 should not
	// replace f1.
	f2 := willWakeAsTask{target: f1}
	s.register(k, f2)
	assert.Same(t, f1, s.entries[k].state.task, "equivalent wakers must not be replaced")
}

// willWakeAsTask is a Task whose WillWake defers to a pre-determined
// target, for exercising slab.register's replace-or-keep branch.
type willWakeAsTask struct {
	target Task
}

func (w willWakeAsTask) Wake() {}
func (w willWakeAsTask) WillWake(other Task) bool {
	return other == w.target
}
