package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	submitted []Task
	err       error
}

func (s *recordingSubmitter) Submit(ctx context.Context, task Task) error {
	s.submitted = append(s.submitted, task)
	return s.err
}

func newWalletEvent(t *testing.T, taskID uuid.UUID) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(TaskTypeWalletStats, taskID,
		WalletStatsPayload{WalletID: uuid.New(), Address: "addr"})
	require.NoError(t, err)
	return event
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	t.Parallel()

	t.Run("creates the task under the event task id", func(t *testing.T) {
		t.Parallel()

		var gotPayload []byte
		factory := FactoryFunc(func(id uuid.UUID, payload []byte) (Task, error) {
			gotPayload = payload
			return NewMockTask(id, TaskTypeWalletStats, payload), nil
		})
		runner := &recordingSubmitter{}
		h := NewTaskFactoryEventHandler(TaskTypeWalletStats, factory, runner, testLogger())

		taskID := uuid.New()
		event := newWalletEvent(t, taskID)
		require.NoError(t, h.HandleEvent(context.Background(), event))

		require.Len(t, runner.submitted, 1)
		assert.Equal(t, taskID, runner.submitted[0].ID())
		assert.JSONEq(t, string(event.Payload), string(gotPayload))
	})

	t.Run("ignores other event types", func(t *testing.T) {
		t.Parallel()

		factory := FactoryFunc(func(uuid.UUID, []byte) (Task, error) {
			t.Fatal("factory must not be called")
			return nil, nil
		})
		runner := &recordingSubmitter{}
		h := NewTaskFactoryEventHandler(TaskTypeWalletStats, factory, runner, testLogger())

		event, err := events.NewTaskRequestEvent("other", uuid.New(), nil)
		require.NoError(t, err)
		assert.NoError(t, h.HandleEvent(context.Background(), event))
		assert.Empty(t, runner.submitted)
	})

	t.Run("factory error", func(t *testing.T) {
		t.Parallel()

		factory := FactoryFunc(func(uuid.UUID, []byte) (Task, error) {
			return nil, errors.New("bad payload")
		})
		runner := &recordingSubmitter{}
		h := NewTaskFactoryEventHandler(TaskTypeWalletStats, factory, runner, testLogger())

		err := h.HandleEvent(context.Background(), newWalletEvent(t, uuid.New()))
		assert.ErrorContains(t, err, "failed to create task")
		assert.Empty(t, runner.submitted)
	})

	t.Run("submit error", func(t *testing.T) {
		t.Parallel()

		factory := FactoryFunc(func(id uuid.UUID, payload []byte) (Task, error) {
			return NewMockTask(id, TaskTypeWalletStats, payload), nil
		})
		runner := &recordingSubmitter{err: ErrQueueFull}
		h := NewTaskFactoryEventHandler(TaskTypeWalletStats, factory, runner, testLogger())

		err := h.HandleEvent(context.Background(), newWalletEvent(t, uuid.New()))
		assert.ErrorIs(t, err, ErrQueueFull)
	})
}

func TestTaskFactoryEventHandler_WithEmitter(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
	factory := FactoryFunc(func(id uuid.UUID, payload []byte) (Task, error) {
		return NewMockTask(id, TaskTypeWalletStats, payload), nil
	})

	emitter := events.NewInMemoryEventEmitter(testLogger())
	emitter.RegisterHandler(NewTaskFactoryEventHandler(TaskTypeWalletStats, factory, runner, testLogger()))

	taskID := uuid.New()
	require.NoError(t, emitter.EmitEvent(context.Background(), newWalletEvent(t, taskID)))

	record, err := store.GetTask(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, record.Status())
	assert.Equal(t, TaskTypeWalletStats, record.Type())
}
