package eventlistener

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Contains(t, Level(99).String(), "LEVEL")
}

func TestNoOpLogger_DiscardsEverything(t *testing.T) {
	l := NewNoOpLogger()
	assert.False(t, l.IsEnabled(LevelDebug))
	l.Log(LogEntry{Level: LevelWarn, Message: "should be discarded"})
}

func TestDefaultLogger_RespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger(LevelWarn)
	l.Out = &buf

	require.False(t, l.IsEnabled(LevelDebug))
	l.Log(LogEntry{Level: LevelDebug, Message: "dropped", Time: time.Now()})
	assert.Empty(t, buf.String())

	require.True(t, l.IsEnabled(LevelWarn))
	l.Log(LogEntry{Level: LevelWarn, Message: "kept", Time: time.Now()})
	assert.True(t, strings.Contains(buf.String(), "kept"))
	assert.True(t, strings.Contains(buf.String(), "WARN"))
}

func TestDefaultLogger_ConcurrentWritesDoNotRace(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger(LevelDebug)
	l.Out = &buf

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			l.Log(LogEntry{Level: LevelInfo, Message: "concurrent", Time: time.Now()})
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, 10, strings.Count(buf.String(), "concurrent"))
}

// TestLogifaceLogger_AdaptsToAHostLoggingPipeline grounds logging.go's
// NewLogifaceLogger against a real backend: a host application that already
// centralizes its structured logging through logiface (here, via stumpy's
// JSON writer) should see this package's drain diagnostics on the same
// sink, with no additional wiring.
func TestLogifaceLogger_AdaptsToAHostLoggingPipeline(t *testing.T) {
	var buf bytes.Buffer
	base := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(&buf), stumpy.WithTimeField("")),
		stumpy.L.WithLevel(logiface.LevelTrace),
	)

	l := NewLogifaceLogger(base)
	require.True(t, l.IsEnabled(LevelDebug))

	l.Log(LogEntry{
		Level:   LevelWarn,
		Message: "spin limit exhausted",
		Fields:  map[string]any{"spins": 100},
	})

	out := buf.String()
	assert.Contains(t, out, "spin limit exhausted")
	assert.Contains(t, out, "warning")
}
