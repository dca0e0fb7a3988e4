package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewQueue(t *testing.T, f *fixture) (*ViewQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewViewQueue(client, f.photos), mr
}

func viewsOf(t *testing.T, f *fixture, id string) int {
	t.Helper()
	photo, err := f.photos.GetByID(context.Background(), id)
	require.NoError(t, err)
	return photo.Views
}

func TestViewQueueAppliesViews(t *testing.T) {
	f := newFixture()
	f.addUser(t, alice, "user_alice")
	f.addPhoto(t, "p1", alice, "loc-1", 0)
	f.addPhoto(t, "p2", alice, "loc-1", 0)
	q, mr := newTestViewQueue(t, f)
	ctx := context.Background()

	require.NoError(t, q.enqueue(ctx, []string{"p1", "p2", "p1"}))
	list, err := mr.List(viewQueueKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p1"}, list)

	for range 3 {
		ok, err := q.next(ctx, time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 2, viewsOf(t, f, "p1"))
	assert.Equal(t, 1, viewsOf(t, f, "p2"))
}

func TestViewQueueDispatchAndRun(t *testing.T) {
	f := newFixture()
	f.addUser(t, alice, "user_alice")
	f.addPhoto(t, "p1", alice, "loc-1", 0)
	q, _ := newTestViewQueue(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	q.Dispatch([]string{"p1", "p1"})
	assert.Eventually(t, func() bool { return viewsOf(t, f, "p1") == 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("view counter did not stop")
	}
}

func TestViewQueueUnknownPhotoIsIgnored(t *testing.T) {
	f := newFixture()
	q, _ := newTestViewQueue(t, f)
	ctx := context.Background()

	require.NoError(t, q.enqueue(ctx, []string{"gone"}))
	ok, err := q.next(ctx, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
