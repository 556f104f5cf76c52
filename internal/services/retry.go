package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

const (
	DefaultRetryInterval   = 2 * time.Second
	DefaultRetryMaxElapsed = 10 * time.Minute
)

// RetryGate retries a call while the controller reports it is not ready yet.
// Any other error is returned on first occurrence.
type RetryGate struct {
	interval   time.Duration
	maxElapsed time.Duration
}

// NewRetryGate creates a gate retrying every interval. A zero maxElapsed retries forever.
func NewRetryGate(interval, maxElapsed time.Duration) *RetryGate {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &RetryGate{interval: interval, maxElapsed: maxElapsed}
}

func (g *RetryGate) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Retry(ctx, g, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Retry runs op through the gate and returns its value.
func Retry[T any](ctx context.Context, g *RetryGate, op func(ctx context.Context) (T, error)) (T, error) {
	started := time.Now()
	attempts := 0

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !srvErrors.IsServiceUnavailableError(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(g.interval)),
		backoff.WithMaxElapsedTime(g.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			zap.S().Named("retry_gate").Debugw("controller not ready, retrying", "attempt", attempts, "next", next, "error", err)
		}),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return res, permanent.Unwrap()
	}
	if err != nil && srvErrors.IsServiceUnavailableError(err) && ctx.Err() == nil {
		return res, srvErrors.NewControllerUnreachableError(time.Since(started), err)
	}
	return res, err
}
