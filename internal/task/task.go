package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeWalletStats recalculates the statistics of a single wallet
	TaskTypeWalletStats = "refresh_wallet_stats"
)

// Status values exposed to API clients.
const (
	PublicStatusPending = "pending"
	PublicStatusSuccess = "success"
	PublicStatusFailure = "failure"
)

var (
	// ErrNotExecutable is returned when a persisted record is executed
	// without first being restored through a Factory.
	ErrNotExecutable = errors.New("task record has no execution logic")

	// ErrUnknownTaskType is returned when no Factory is registered for a type.
	ErrUnknownTaskType = errors.New("unknown task type")
)

// PublicStatus projects the internal lifecycle onto the three states clients
// understand. Queued and running tasks are both reported as pending.
func PublicStatus(status TaskStatus) string {
	switch status {
	case TaskStatusCompleted:
		return PublicStatusSuccess
	case TaskStatusFailed:
		return PublicStatusFailure
	default:
		return PublicStatusPending
	}
}

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Factory builds an executable Task for a known id and payload. It is used
// both for new requests and for rehydrating records after a restart.
type Factory interface {
	CreateTask(id uuid.UUID, payload []byte) (Task, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(id uuid.UUID, payload []byte) (Task, error)

// CreateTask calls f(id, payload).
func (f FactoryFunc) CreateTask(id uuid.UUID, payload []byte) (Task, error) {
	return f(id, payload)
}

// Record is a task as loaded from a TaskStore. It carries the persisted
// bookkeeping but cannot be executed on its own.
type Record struct {
	TaskID       uuid.UUID
	TaskType     string
	TaskPayload  []byte
	TaskStatus   TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ID returns the task's unique identifier
func (r *Record) ID() uuid.UUID { return r.TaskID }

// Type returns the task type identifier
func (r *Record) Type() string { return r.TaskType }

// Payload returns the persisted payload
func (r *Record) Payload() []byte { return r.TaskPayload }

// Status returns the persisted status
func (r *Record) Status() TaskStatus { return r.TaskStatus }

// Execute always fails; see Factory.
func (r *Record) Execute(context.Context) error { return ErrNotExecutable }

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// EnqueueWait adds a task, waiting for room until ctx is done
	EnqueueWait(ctx context.Context, task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetTask loads a single task. Returns store.ErrTaskNotFound when the id
	// is unknown.
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
