package eventlistener

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinMutex_TryLock_Uncontended(t *testing.T) {
	m := newSpinMutex(defaultSpinLimit)
	require.True(t, m.TryLock())
	m.Unlock()
	require.True(t, m.TryLock(), "must be reacquirable after Unlock")
	m.Unlock()
}

func TestSpinMutex_TryLock_FailsWhileHeld(t *testing.T) {
	m := newSpinMutex(0) // no spin: single CAS attempt
	require.True(t, m.TryLock())
	assert.False(t, m.TryLock(), "second TryLock must fail while held")
	m.Unlock()
	assert.True(t, m.TryLock())
}

func TestSpinMutex_SpinsThenSucceeds(t *testing.T) {
	m := newSpinMutex(1_000_000)
	require.True(t, m.TryLock())

	go func() {
		time.Sleep(5 * time.Millisecond)
		m.Unlock()
	}()

	require.Eventually(t, func() bool {
		return m.TryLock()
	}, time.Second, time.Millisecond)
}

func TestSpinMutex_MutualExclusion(t *testing.T) {
	m := newSpinMutex(defaultSpinLimit)
	var counter int64
	var wg sync.WaitGroup
	const goroutines = 16
	const perGoroutine = 2000

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				for !m.TryLock() {
					// spin-limit exhausted; retry from the caller's side,
					// exactly as inner.go's fast/slow-path dispatch would.
				}
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, goroutines*perGoroutine, counter)
}

func TestSpinMutex_NegativeSpinLimitClampedToZero(t *testing.T) {
	m := newSpinMutex(-5)
	assert.Equal(t, 0, m.spinLimit)
	require.True(t, m.TryLock())
}
