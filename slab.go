package eventlistener

// slotKey identifies a listener entry within a slab. 0 is reserved for the
// sentinel at entries[0] and doubles as the "no such listener" value for
// head/tail/start/prev/next links (invariant 1).
type slotKey = uint32

// listenerStateKind tags the variant of ListenerState.
type listenerStateKind uint8

const (
	// stateCreated: inserted, not yet notified, no task registered.
	stateCreated listenerStateKind = iota
	// stateTask: a task handle is registered; wake it upon notification.
	stateTask
	// stateNotified: notification delivered but not yet consumed.
	stateNotified
	// stateNotifiedTaken: notification observed by the owning listener;
	// remains until removal. Defined for IsNotified's predicate and parity
	// with the data model, but this implementation's only state-observing
	// operation (register) removes a Notified entry outright rather than
	// re-tagging it NotifiedTaken first — there is no operation among
	// insert/remove/notify/register that needs the intermediate marking
	// separately from removal.
	stateNotifiedTaken
)

// ListenerState is the tagged value held by a slab entry.
type ListenerState struct {
	kind       listenerStateKind
	task       Task
	additional bool // only meaningful when kind == stateNotified
}

// IsNotified reports whether the state is Notified or NotifiedTaken.
func (s ListenerState) IsNotified() bool {
	return s.kind == stateNotified || s.kind == stateNotifiedTaken
}

// entryKind tags the variant of a slab slot.
type entryKind uint8

const (
	entrySentinel entryKind = iota
	entryListener
	entryEmpty
)

// entry is one slab slot: Sentinel, Listener{state,prev,next}, or
// Empty(nextEmpty).
type entry struct {
	kind       entryKind
	state      ListenerState
	prev, next slotKey
	nextEmpty  slotKey
}

// slab is the vector-backed arena of listener entries, threaded with an
// intrusive doubly-linked FIFO (by index, not pointer) plus a free list.
// Every method here assumes the caller holds the owning spinMutex — the
// slab itself does no synchronization.
type slab struct {
	entries    []entry
	head, tail slotKey
	start      slotKey
	notified   int
	len        int
	firstEmpty slotKey
}

// newSlab returns an empty slab with entries[0] = Sentinel (invariant 1).
func newSlab() slab {
	return slab{
		entries:    []entry{{kind: entrySentinel}},
		firstEmpty: 1,
	}
}

// insert allocates a new listener entry in state, appends it to the FIFO
// tail, and returns its key. O(1) amortized.
func (s *slab) insert(state ListenerState) slotKey {
	var key slotKey
	if s.firstEmpty == slotKey(len(s.entries)) {
		s.entries = append(s.entries, entry{kind: entryListener, state: state})
		key = slotKey(len(s.entries) - 1)
		s.firstEmpty = slotKey(len(s.entries))
	} else {
		key = s.firstEmpty
		s.firstEmpty = s.entries[key].nextEmpty
		s.entries[key] = entry{kind: entryListener, state: state}
	}

	s.entries[key].prev = s.tail
	s.entries[key].next = 0
	if s.tail != 0 {
		s.entries[s.tail].next = key
	} else {
		s.head = key
	}
	s.tail = key

	if s.start == 0 {
		s.start = key
	}

	s.len++
	return key
}

// remove splices key out of the slab, returning its final state and any
// tasks that must be woken because propagate re-delivered a notification
// that key never consumed.
func (s *slab) remove(key slotKey, propagate bool) (ListenerState, []Task) {
	e := s.entries[key]
	if e.kind != entryListener {
		panicInvariant("remove called on non-listener entry")
	}
	state := e.state

	if e.prev != 0 {
		s.entries[e.prev].next = e.next
	} else {
		s.head = e.next
	}
	if e.next != 0 {
		s.entries[e.next].prev = e.prev
	} else {
		s.tail = e.prev
	}
	if s.start == key {
		s.start = e.next
	}

	s.entries[key] = entry{kind: entryEmpty, nextEmpty: s.firstEmpty}
	s.firstEmpty = key

	if state.IsNotified() && s.notified > 0 {
		s.notified--
	}
	s.len--

	var woken []Task
	if propagate && state.kind == stateNotified {
		woken = s.notify(1, state.additional)
	}
	return state, woken
}

// notify advances the start cursor, marking up to n listeners Notified.
// Returns any previously-registered tasks that must be woken (outside the
// caller's lock).
func (s *slab) notify(n int, additional bool) []Task {
	if !additional {
		if n <= s.notified {
			return nil
		}
		n -= s.notified
	}

	var woken []Task
	for n > 0 && s.start != 0 {
		key := s.start
		e := &s.entries[key]
		s.start = e.next

		old := e.state
		e.state = ListenerState{kind: stateNotified, additional: additional}
		if old.kind == stateTask {
			woken = append(woken, old.task)
		}

		s.notified++
		n--
	}
	return woken
}

// register installs task against the listener at key. Returns true iff the
// listener was already notified — in which
// case the slot has been removed (non-propagating) and the notification is
// considered consumed by the caller.
func (s *slab) register(key slotKey, task Task) bool {
	e := &s.entries[key]
	if e.kind != entryListener {
		panicInvariant("register called on non-listener entry")
	}

	switch e.state.kind {
	case stateNotified, stateNotifiedTaken:
		s.remove(key, false)
		return true
	case stateTask:
		existing := e.state.task
		if !task.WillWake(existing) {
			e.state = ListenerState{kind: stateTask, task: task}
		}
		return false
	default: // stateCreated
		e.state = ListenerState{kind: stateTask, task: task}
		return false
	}
}
