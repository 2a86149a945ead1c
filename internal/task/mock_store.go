package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/store"
)

// MockTaskStore implements the TaskStore interface for testing
type MockTaskStore struct {
	mutex           sync.RWMutex
	tasks           map[uuid.UUID]Task
	statuses        map[uuid.UUID]TaskStatus
	errorMessages   map[uuid.UUID]string
	taskStatusTimes map[uuid.UUID]time.Time
	SaveFn          func(ctx context.Context, task Task) error
	UpdateStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates a new MockTaskStore with default implementations
func NewMockTaskStore() *MockTaskStore {
	s := &MockTaskStore{
		tasks:           make(map[uuid.UUID]Task),
		statuses:        make(map[uuid.UUID]TaskStatus),
		errorMessages:   make(map[uuid.UUID]string),
		taskStatusTimes: make(map[uuid.UUID]time.Time),
	}

	s.SaveFn = func(ctx context.Context, task Task) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		s.tasks[task.ID()] = task
		s.statuses[task.ID()] = task.Status()
		s.taskStatusTimes[task.ID()] = time.Now()
		return nil
	}

	s.UpdateStatusFn = func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		if _, exists := s.tasks[taskID]; !exists {
			return nil // Simulate "not found" as a no-op, like the SQL store
		}
		s.statuses[taskID] = status
		s.errorMessages[taskID] = errorMsg
		s.taskStatusTimes[taskID] = time.Now()
		return nil
	}

	return s
}

// SaveTask persists a task to the mock store
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	return s.SaveFn(ctx, task)
}

// UpdateTaskStatus updates the status of a task in the mock store
func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
}

// GetTask returns a snapshot of the stored task
func (s *MockTaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &Record{
		TaskID:       taskID,
		TaskType:     task.Type(),
		TaskPayload:  task.Payload(),
		TaskStatus:   s.statuses[taskID],
		ErrorMessage: s.errorMessages[taskID],
		UpdatedAt:    s.taskStatusTimes[taskID],
	}, nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *MockTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Task
	now := time.Now()
	for id, task := range s.tasks {
		if s.statuses[id] != status {
			continue
		}
		if olderThan == 0 || now.Sub(s.taskStatusTimes[id]) > olderThan {
			out = append(out, task)
		}
	}
	return out
}

// StatusOf returns the stored status of a task
func (s *MockTaskStore) StatusOf(taskID uuid.UUID) TaskStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.statuses[taskID]
}

// Put stores a task with an explicit status and status time
func (s *MockTaskStore) Put(task Task, status TaskStatus, at time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tasks[task.ID()] = task
	s.statuses[task.ID()] = status
	s.taskStatusTimes[task.ID()] = at
}

// WithTx implements TaskStore.WithTx for the mock store
// In the mock implementation, we just return the same store instance
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

var _ TaskStore = (*MockTaskStore)(nil)
