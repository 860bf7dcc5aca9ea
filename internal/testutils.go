package internal

import (
	"testing"
	"time"
)

// Within fails the test if fn has not returned after d
func Within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()

	done := make(chan struct{}, 1)

	go func() {
		fn()
		done <- struct{}{}
	}()

	select {
	case <-time.After(d):
		t.Error("timed out")
	case <-done:
	}
}
