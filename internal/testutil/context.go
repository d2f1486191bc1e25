package testutil

import (
	"context"
	"testing"
	"time"
)

// replayTimeout bounds a replay when the test binary has no deadline.
const replayTimeout = 10 * time.Second

// Context returns a context for running replays in a test. It ends at the
// test binary's deadline (go test -timeout) or after replayTimeout,
// whichever comes first, and is cancelled when the test ends.
func Context(t testing.TB) context.Context {
	t.Helper()

	deadline := time.Now().Add(replayTimeout)
	if d, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if td, set := d.Deadline(); set && td.Before(deadline) {
			deadline = td
		}
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t.Cleanup(cancel)
	return ctx
}

// Cancelled returns a context that is already cancelled, for checking that
// long operations give up.
func Cancelled(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
