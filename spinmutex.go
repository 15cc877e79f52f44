package eventlistener

import "sync/atomic"

// defaultSpinLimit is the number of failed relaxed-load observations the
// slow path of TryLock will tolerate before giving up. Overridable via
// WithSpinLimit.
const defaultSpinLimit = 100

// spinMutex is a best-effort, non-blocking try-lock over a single owned
// payload. It never parks a goroutine: TryLock either acquires the lock or
// reports failure so the caller can fall back to the intake queue.
//
// This is the load-bearing reason the intake queue exists at all: if this
// were promoted to a real blocking mutex, there would be no "lock
// unavailable" case for callers to defer against.
type spinMutex struct {
	_      [sizeOfCacheLine]byte
	locked atomic.Bool
	_      [sizeOfCacheLine - 1]byte
	spinLimit int
}

// newSpinMutex constructs a spinMutex with the given bounded-spin retry
// count. A non-positive limit means "try the CAS exactly once, no spin."
func newSpinMutex(spinLimit int) *spinMutex {
	if spinLimit <= 0 {
		spinLimit = 0
	}
	return &spinMutex{spinLimit: spinLimit}
}

// TryLock attempts to acquire the lock, spinning a bounded number of times
// on contention before giving up. Returns true iff the lock was acquired.
func (m *spinMutex) TryLock() bool {
	if m.locked.CompareAndSwap(false, true) {
		return true
	}
	for i := 0; i < m.spinLimit; i++ {
		if m.locked.Load() {
			continue
		}
		if m.locked.CompareAndSwap(false, true) {
			return true
		}
	}
	return false
}

// Unlock releases the lock. The caller must hold it.
func (m *spinMutex) Unlock() {
	m.locked.Store(false)
}
