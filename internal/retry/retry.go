// Package retry runs an operation under a fixed attempt budget with a constant
// pause between attempts. A classifier decides which failures end the loop early.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Decision int

const (
	Retry Decision = iota
	Fatal
)

func (d Decision) String() string {
	if d == Fatal {
		return "fatal"
	}
	return "retry"
}

type Classifier func(error) Decision

// Always retries every failure. Whether the loop itself was canceled is decided
// from its context, not from the error, so a per-attempt timeout is retried.
func Always(error) Decision {
	return Retry
}

type Policy struct {
	Attempts int
	Delay    time.Duration
	Classify Classifier

	// Timer overrides the wall-clock timer used between attempts.
	Timer backoff.Timer
	// Notify is called after a failed attempt that will be retried, before the pause.
	Notify func(attempt int, err error, wait time.Duration)
}

// Do calls op until it succeeds, the classifier returns Fatal, the budget is spent
// or ctx is done. The pause happens between attempts only. The returned error is the
// last attempt's error, or ctx.Err() if the context ended the loop.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempts := max(p.Attempts, 1)
	classify := p.Classify
	if classify == nil {
		classify = Always
	}

	b := backoff.WithMaxRetries(
		backoff.WithContext(backoff.NewConstantBackOff(p.Delay), ctx),
		uint64(attempts-1),
	)

	attempt := 0
	operation := func() (T, error) {
		attempt++
		res, err := op(ctx, attempt)
		if err == nil {
			return res, nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return res, backoff.Permanent(cerr)
		}
		if classify(err) == Fatal {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	var notify backoff.Notify
	if p.Notify != nil {
		notify = func(err error, wait time.Duration) {
			p.Notify(attempt, err, wait)
		}
	}

	return backoff.RetryNotifyWithTimerAndData(operation, b, notify, p.Timer)
}
