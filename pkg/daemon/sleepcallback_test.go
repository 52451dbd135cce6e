package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	ch chan bool
}

func (f *fakeNotifier) Notifications() <-chan bool { return f.ch }
func (f *fakeNotifier) Close() error               { close(f.ch); return nil }

func TestListenSleepNotifications(t *testing.T) {
	setupTestDaemon(t, chargingPrefill())

	// Drain a wakeup left by an earlier test.
	select {
	case <-wakeup:
	default:
	}

	n := &fakeNotifier{ch: make(chan bool)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		listenSleepNotifications(context.Background(), n)
	}()

	// Going to sleep runs a tick right away.
	n.ch <- true
	require.Eventually(t, func() bool {
		tickLock.Lock()
		defer tickLock.Unlock()
		return state.Initialized()
	}, 5*time.Second, 10*time.Millisecond)

	// Waking up asks the loop for a tick.
	n.ch <- false
	select {
	case <-wakeup:
	case <-time.After(5 * time.Second):
		t.Fatal("no tick requested after wake up")
	}

	require.NoError(t, n.Close())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after the notifier closed")
	}
}

func TestListenSleepNotifications_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := &fakeNotifier{ch: make(chan bool)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		listenSleepNotifications(ctx, n)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after ctx was done")
	}
}
