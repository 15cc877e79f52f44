package eventlistener

// These constants are verified against the runtime's actual cache line size
// in align_test.go.
const (
	// sizeOfCacheLine is the size, in bytes, used to pad hot atomic fields so
	// they don't share a cache line with an unrelated field (false sharing).
	// 64 bytes covers every mainstream architecture (x86-64, arm64); where the
	// real line is smaller this is simply more padding than strictly needed.
	sizeOfCacheLine = 64

	// sizeOfAtomicUint64 is the size of an atomic.Uint64 value.
	sizeOfAtomicUint64 = 8
)
