package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := range 3000 {
		q.Push(i)
	}
	assert.Equal(t, 3000, q.Len())

	for i := range 3000 {
		v, err := q.Pop(context.Background())
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	assert.Zero(t, q.Len())
}

func TestQueuePopWaitsForPush(t *testing.T) {
	q := New[string]()

	time.AfterFunc(20*time.Millisecond, func() { q.Push("late") })

	v, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", v)
}

func TestQueuePopHonoursContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueManyProducers(t *testing.T) {
	const producers, perProducer = 8, 500

	q := New[int]()
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.Push(p*perProducer + i)
			}
		}()
	}

	seen := make(map[int]bool)
	for range producers * perProducer {
		v, err := q.Pop(context.Background())
		require.NoError(t, err)
		require.False(t, seen[v], "entry %d popped twice", v)
		seen[v] = true
	}
	wg.Wait()

	assert.Len(t, seen, producers*perProducer)
	assert.Zero(t, q.Len())
}
