package eventlistener

import "sync/atomic"

// Metrics holds atomic counters describing an Event's runtime behavior.
// Only populated when the Event was constructed WithMetrics(true); otherwise
// every field reads zero.
type Metrics struct {
	// FastPathAcquires counts operations that acquired the spin mutex
	// immediately or via its bounded spin, without touching the intake
	// queue.
	FastPathAcquires uint64
	// SlowPathDeferrals counts operations that fell back to the intake
	// queue because the spin mutex could not be acquired.
	SlowPathDeferrals uint64
	// DrainedOps counts the total number of intake-queue nodes ever applied
	// during a drain.
	DrainedOps uint64
	// MaxDrainBatch is the largest number of intake-queue nodes drained in
	// a single unlock cycle.
	MaxDrainBatch uint64
}

// metricsCounters is the mutable home for Metrics; split out so it can be
// cheaply nil when metrics are disabled.
type metricsCounters struct {
	_                 [sizeOfCacheLine]byte
	fastPathAcquires  atomic.Uint64
	slowPathDeferrals atomic.Uint64
	drainedOps        atomic.Uint64
	maxDrainBatch     atomic.Uint64
}

func (m *metricsCounters) snapshot() Metrics {
	if m == nil {
		return Metrics{}
	}
	return Metrics{
		FastPathAcquires:  m.fastPathAcquires.Load(),
		SlowPathDeferrals: m.slowPathDeferrals.Load(),
		DrainedOps:        m.drainedOps.Load(),
		MaxDrainBatch:     m.maxDrainBatch.Load(),
	}
}

func (m *metricsCounters) fastAcquire() {
	if m == nil {
		return
	}
	m.fastPathAcquires.Add(1)
}

func (m *metricsCounters) slowDeferral() {
	if m == nil {
		return
	}
	m.slowPathDeferrals.Add(1)
}

func (m *metricsCounters) recordDrainBatch(n int) {
	if m == nil || n == 0 {
		return
	}
	m.drainedOps.Add(uint64(n))
	for {
		cur := m.maxDrainBatch.Load()
		if uint64(n) <= cur {
			return
		}
		if m.maxDrainBatch.CompareAndSwap(cur, uint64(n)) {
			return
		}
	}
}
