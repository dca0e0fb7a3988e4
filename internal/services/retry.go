package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const backoffMultiplier = 1.5

// RetryPolicy bounds retries of transient failures with exponential backoff
type RetryPolicy struct {
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.BackoffInitial),
		backoff.WithMaxInterval(p.BackoffMax),
		backoff.WithMultiplier(backoffMultiplier),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(max(p.MaxRetries, 0))), ctx)
}

// Do runs fn until it succeeds, returns a non-transient error, or runs out of retries
func (p RetryPolicy) Do(ctx context.Context, op string, transient func(error) bool, fn func(context.Context) error) error {
	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		err := fn(ctx)
		if err != nil && !transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Int("attempt", attempts).Dur("backoff", wait).Msg("Retrying")
	})
	if err == nil || ctx.Err() != nil || !transient(err) {
		return err
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}
