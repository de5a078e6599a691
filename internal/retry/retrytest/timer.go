// Package retrytest provides a backoff timer that fires at once and records every wait.
package retrytest

import (
	"sync"
	"time"
)

type Timer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func (t *Timer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *Timer) Stop() {}

func (t *Timer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}

// Waits returns the durations passed to Start, in order.
func (t *Timer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}
