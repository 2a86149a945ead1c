package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_EnqueueAndConsume(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(2, testLogger())
	first := CreateMockTaskWithPayload("a")
	second := CreateMockTaskWithPayload("b")

	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(second))

	ch := q.GetChannel()
	assert.Equal(t, first.ID(), (<-ch).ID())
	assert.Equal(t, second.ID(), (<-ch).ID())
}

func TestTaskQueue_Full(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(1, testLogger())
	require.NoError(t, q.Enqueue(CreateMockTaskWithPayload("a")))

	err := q.Enqueue(CreateMockTaskWithPayload("b"))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "capacity 1")
}

func TestTaskQueue_EnqueueWait(t *testing.T) {
	t.Parallel()

	t.Run("waits for room", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, testLogger())
		first := CreateMockTaskWithPayload("a")
		second := CreateMockTaskWithPayload("b")
		require.NoError(t, q.Enqueue(first))

		done := make(chan error, 1)
		go func() {
			done <- q.EnqueueWait(context.Background(), second)
		}()

		assert.Equal(t, first.ID(), (<-q.GetChannel()).ID())
		require.NoError(t, <-done)
		assert.Equal(t, second.ID(), (<-q.GetChannel()).ID())
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, testLogger())
		require.NoError(t, q.Enqueue(CreateMockTaskWithPayload("a")))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := q.EnqueueWait(ctx, CreateMockTaskWithPayload("b"))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, testLogger())
		q.Close()
		assert.ErrorIs(t, q.EnqueueWait(context.Background(), CreateMockTaskWithPayload("a")), ErrQueueClosed)
	})
}

func TestTaskQueue_MinimumSize(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(0, testLogger())
	assert.NoError(t, q.Enqueue(CreateMockTaskWithPayload("a")))
}

func TestTaskQueue_Close(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(2, testLogger())
	require.NoError(t, q.Enqueue(CreateMockTaskWithPayload("a")))
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(CreateMockTaskWithPayload("b")), ErrQueueClosed)

	// Buffered tasks drain before the channel reports closed.
	_, ok := <-q.GetChannel()
	assert.True(t, ok)
	_, ok = <-q.GetChannel()
	assert.False(t, ok)
}

func TestTaskQueue_ConcurrentEnqueueAndClose(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue(100, testLogger())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Enqueue(CreateMockTaskWithPayload("x"))
		}()
	}
	q.Close()
	wg.Wait()

	assert.ErrorIs(t, q.Enqueue(CreateMockTaskWithPayload("y")), ErrQueueClosed)
}
