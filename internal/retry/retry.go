// Package retry wraps calls to external services in bounded exponential
// backoff. Ledger transitions never go through it; only the side calls they
// make do.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retried call.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	MaxAttempts     uint
}

// DefaultPolicy is used when a zero Policy is passed.
var DefaultPolicy = Policy{
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	MaxElapsed:      10 * time.Second,
	MaxAttempts:     5,
}

// Permanent marks err as not worth retrying. Do returns the unwrapped err.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a Permanent error, the policy is
// exhausted or ctx ends. The last error is returned.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, name string, op func(context.Context) (T, error)) (T, error) {
	if p == (Policy{}) {
		p = DefaultPolicy
	}
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	opts := []backoff.RetryOption{backoff.WithBackOff(b)}
	if p.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(p.MaxAttempts))
	}
	if p.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.MaxElapsed))
	}
	if logger != nil {
		opts = append(opts, backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("retrying call",
				slog.String("op", name),
				slog.Duration("backoff", next),
				slog.Any("error", err),
			)
		}))
	}

	res, err := backoff.Retry(ctx, func() (T, error) {
		return op(ctx)
	}, opts...)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return res, perm.Unwrap()
		}
	}
	return res, err
}
