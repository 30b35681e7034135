package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerCoalesces(t *testing.T) {
	var runs int32
	d := New(30*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })

	d.Trigger()
	d.Trigger()
	d.Trigger()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) == 1
	}, time.Second, 5*time.Millisecond)

	// Silence after the run: no further executions.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestFlushRunsImmediatelyAndCancelsTimer(t *testing.T) {
	var runs int32
	d := New(time.Hour, func() { atomic.AddInt32(&runs, 1) })

	d.Trigger()
	assert.True(t, d.Pending())

	d.Flush()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.False(t, d.Pending())

	// Nothing pending: flush is a no-op.
	d.Flush()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestStopCancelsWithoutRunning(t *testing.T) {
	var runs int32
	d := New(20*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })

	d.Trigger()
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))

	// Stopped debouncers ignore further triggers.
	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
}
