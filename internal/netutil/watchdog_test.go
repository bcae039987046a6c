package netutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIdleWatchdogNotIdleAfterTouch(t *testing.T) {
	w := NewIdleWatchdog(50 * time.Millisecond)
	require.False(t, w.Idle())
}

func TestIdleWatchdogGoesIdleAfterTimeout(t *testing.T) {
	w := NewIdleWatchdog(20 * time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	require.True(t, w.Idle())
}

func TestIdleWatchdogTouchResetsTimer(t *testing.T) {
	w := NewIdleWatchdog(40 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	w.Touch()
	time.Sleep(25 * time.Millisecond)
	require.False(t, w.Idle())
}

func TestIdleWatchdogRunFiresOnIdle(t *testing.T) {
	w := NewIdleWatchdog(15 * time.Millisecond)
	stop := make(chan struct{})
	defer close(stop)

	fired := make(chan struct{})
	go w.Run(5*time.Millisecond, stop, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("onIdle was never called")
	}
}
