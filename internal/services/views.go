package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	viewQueueKey     = "photos:views:pending"
	viewQueueTimeout = 5 * time.Second
	viewPollTimeout  = 5 * time.Second
	viewErrorBackoff = time.Second
)

// ViewCounter increments a photo's view count
type ViewCounter interface {
	IncrementViews(ctx context.Context, id string) error
}

// ViewQueue buffers photo views in Redis and applies them in the background
type ViewQueue struct {
	client  *redis.Client
	counter ViewCounter
}

// NewViewQueue creates a new view queue
func NewViewQueue(client *redis.Client, counter ViewCounter) *ViewQueue {
	return &ViewQueue{client: client, counter: counter}
}

// Dispatch enqueues one view per id without waiting. Failures are logged only.
func (q *ViewQueue) Dispatch(photoIDs []string) {
	if len(photoIDs) == 0 {
		return
	}
	ids := append([]string(nil), photoIDs...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), viewQueueTimeout)
		defer cancel()
		if err := q.enqueue(ctx, ids); err != nil {
			log.Error().Err(err).Int("count", len(ids)).Msg("Failed to enqueue photo views")
		}
	}()
}

func (q *ViewQueue) enqueue(ctx context.Context, ids []string) error {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	if err := q.client.RPush(ctx, viewQueueKey, values...).Err(); err != nil {
		return fmt.Errorf("failed to push views: %w", err)
	}
	return nil
}

// Run applies queued views until ctx is cancelled
func (q *ViewQueue) Run(ctx context.Context) {
	log.Info().Msg("View counter started")
	for {
		if ctx.Err() != nil {
			log.Info().Msg("View counter stopped")
			return
		}
		if _, err := q.next(ctx, viewPollTimeout); err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Msg("Failed to apply photo view")
			select {
			case <-time.After(viewErrorBackoff):
			case <-ctx.Done():
			}
		}
	}
}

// next applies one queued view, false if the queue stayed empty for timeout
func (q *ViewQueue) next(ctx context.Context, timeout time.Duration) (bool, error) {
	res, err := q.client.BLPop(ctx, timeout, viewQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to pop view: %w", err)
	}
	// res is [key, value]
	id := res[1]
	if err := q.counter.IncrementViews(ctx, id); err != nil {
		return true, fmt.Errorf("photo %s: %w", id, err)
	}
	return true, nil
}
