// logging.go - structured diagnostics for the eventlistener package.
//
// Nothing in spinmutex.go, intake.go or slab.go logs. inner.go logs in two
// places: each slow-path deferral is logged without holding the spin lock,
// and runLocked logs a drain summary after draining the intake queue, while
// the spin lock is still held.

package eventlistener

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// Level is the severity of a diagnostic log entry emitted by this package.
type Level int32

const (
	// LevelDebug is used for fine-grained diagnostics: slow-path fallbacks,
	// drain batch sizes, spin-mutex bailouts.
	LevelDebug Level = iota
	// LevelInfo is currently unused by this package but reserved for future
	// lifecycle events (e.g. Event construction).
	LevelInfo
	// LevelWarn is not emitted by this package itself; an exhausted spin
	// mutex retry budget is reported at LevelDebug as a slow-path deferral.
	LevelWarn
)

// String returns a human-readable representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return fmt.Sprintf("LEVEL(%d)", l)
	}
}

// LogEntry is a single structured diagnostic event.
type LogEntry struct {
	Level   Level
	Message string
	Time    time.Time
	// Fields carries event-specific context; the drain summary sets
	// "drained" (int) and "contended" (bool).
	Fields map[string]any
}

// Logger receives diagnostic entries from an Event. Implementations must not
// block for long: they are invoked on the goroutine performing the
// operation, and the drain summary is logged while that goroutine still
// holds the Event's spin lock.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level Level) bool
}

// noOpLogger discards every entry; it is the default when no Logger is
// configured via WithLogger.
type noOpLogger struct{}

func (noOpLogger) Log(LogEntry) {}

func (noOpLogger) IsEnabled(Level) bool { return false }

// NewNoOpLogger returns a Logger that discards all entries.
func NewNoOpLogger() Logger { return noOpLogger{} }

// DefaultLogger is a minimal Logger that writes line-oriented text to an
// io.Writer, gated by a minimum level.
type DefaultLogger struct {
	level atomic.Int32
	mu    sync.Mutex
	Out   io.Writer
}

// NewDefaultLogger creates a DefaultLogger writing to os.Stderr, enabled at
// and above the given minimum level.
func NewDefaultLogger(level Level) *DefaultLogger {
	l := &DefaultLogger{Out: os.Stderr}
	l.level.Store(int32(level))
	return l
}

// IsEnabled reports whether the given level would be written.
func (l *DefaultLogger) IsEnabled(level Level) bool {
	return int32(level) >= l.level.Load()
}

// Log writes entry to Out if its level is enabled.
func (l *DefaultLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.Out, "[%s] %s %s %v\n", entry.Time.Format(time.RFC3339Nano), entry.Level, entry.Message, entry.Fields)
}

// NewLogifaceLogger adapts an existing github.com/joeycumines/logiface
// logger into a Logger, so a host application that already centralizes its
// structured logging through logiface can receive this package's
// diagnostics on the same sink, with the same fields/processors/writers it
// already configured.
func NewLogifaceLogger[E logiface.Event](l *logiface.Logger[E]) Logger {
	return &logifaceLogger[E]{l: l}
}

type logifaceLogger[E logiface.Event] struct {
	l *logiface.Logger[E]
}

func (a *logifaceLogger[E]) IsEnabled(level Level) bool {
	// logiface orders severity the syslog way (lower value = more severe);
	// a message is enabled when its level is at least as severe as the
	// logger's configured threshold, i.e. numerically <=.
	return toLogifaceLevel(level) <= a.l.Level()
}

func (a *logifaceLogger[E]) Log(entry LogEntry) {
	b := a.l.Build(toLogifaceLevel(entry.Level))
	if b == nil || !b.Enabled() {
		return
	}
	for k, v := range entry.Fields {
		b = b.Interface(k, v)
	}
	b.Log(entry.Message)
}

func toLogifaceLevel(l Level) logiface.Level {
	switch l {
	case LevelWarn:
		return logiface.LevelWarning
	case LevelInfo:
		return logiface.LevelInformational
	default:
		return logiface.LevelDebug
	}
}
