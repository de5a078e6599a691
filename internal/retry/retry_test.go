package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmorgan81/promptshot/internal/retry/retrytest"
)

var errBoom = errors.New("boom")

func TestDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  int // attempts that fail before success
		attempts  int
		wantCalls int
		wantWaits int
		wantErr   bool
	}{
		{name: "FirstTry", failures: 0, attempts: 5, wantCalls: 1, wantWaits: 0},
		{name: "SucceedsOnThird", failures: 2, attempts: 5, wantCalls: 3, wantWaits: 2},
		{name: "SucceedsOnLast", failures: 4, attempts: 5, wantCalls: 5, wantWaits: 4},
		{name: "Exhausted", failures: 10, attempts: 5, wantCalls: 5, wantWaits: 4, wantErr: true},
		{name: "SingleAttempt", failures: 10, attempts: 1, wantCalls: 1, wantWaits: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := &retrytest.Timer{}
			calls := 0
			got, err := Do(context.Background(), Policy{Attempts: tt.attempts, Delay: 3 * time.Second, Timer: timer},
				func(_ context.Context, attempt int) (int, error) {
					calls++
					if attempt != calls {
						t.Errorf("attempt = %d, want %d", attempt, calls)
					}
					if calls <= tt.failures {
						return 0, errBoom
					}
					return 42, nil
				})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			waits := timer.Waits()
			if len(waits) != tt.wantWaits {
				t.Errorf("waits = %d, want %d", len(waits), tt.wantWaits)
			}
			for _, w := range waits {
				if w != 3*time.Second {
					t.Errorf("wait = %s, want 3s", w)
				}
			}
			if tt.wantErr {
				if !errors.Is(err, errBoom) {
					t.Errorf("err = %v, want errBoom", err)
				}
				return
			}
			if err != nil || got != 42 {
				t.Errorf("got %d, %v", got, err)
			}
		})
	}
}

func TestDoFatalStopsImmediately(t *testing.T) {
	timer := &retrytest.Timer{}
	calls := 0
	_, err := Do(context.Background(), Policy{
		Attempts: 5,
		Delay:    time.Second,
		Timer:    timer,
		Classify: func(error) Decision { return Fatal },
	}, func(context.Context, int) (struct{}, error) {
		calls++
		return struct{}{}, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 || len(timer.Waits()) != 0 {
		t.Errorf("calls = %d, waits = %d", calls, len(timer.Waits()))
	}
}

func TestDoNotify(t *testing.T) {
	var seen []int
	_, _ = Do(context.Background(), Policy{
		Attempts: 3,
		Delay:    time.Millisecond,
		Timer:    &retrytest.Timer{},
		Notify: func(attempt int, err error, wait time.Duration) {
			seen = append(seen, attempt)
		},
	}, func(context.Context, int) (int, error) { return 0, errBoom })

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("notified attempts = %v, want [1 2]", seen)
	}
}

func TestDoCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, func(context.Context, int) (int, error) {
		calls++
		cancel()
		return 0, errBoom
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAlways(t *testing.T) {
	for _, err := range []error{errBoom, context.DeadlineExceeded, context.Canceled} {
		if Always(err) != Retry {
			t.Errorf("Always(%v) should retry", err)
		}
	}
}

func TestDoRetriesAttemptTimeouts(t *testing.T) {
	timer := &retrytest.Timer{}
	calls := 0
	_, err := Do(context.Background(), Policy{Attempts: 5, Delay: 3 * time.Second, Timer: timer},
		func(context.Context, int) (int, error) {
			calls++
			return 0, fmt.Errorf("awaiting headers: %w", context.DeadlineExceeded)
		})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if calls != 5 || len(timer.Waits()) != 4 {
		t.Errorf("calls = %d, waits = %d, want 5 and 4", calls, len(timer.Waits()))
	}
}

func TestDoDeadlineEndsLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	calls := 0
	_, err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, func(context.Context, int) (int, error) {
		calls++
		return 0, errBoom
	})
	if !errors.Is(err, context.DeadlineExceeded) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}
