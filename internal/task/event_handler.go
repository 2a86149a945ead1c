package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/walletstats/internal/events"
)

// Submitter accepts tasks for background execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to handle task creation events and delegate them to the task factory
// registered for the event type.
type TaskFactoryEventHandler struct {
	taskType    string
	taskFactory Factory
	taskRunner  Submitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a handler that turns events of
// taskType into tasks and submits them to the runner.
func NewTaskFactoryEventHandler(
	taskType string,
	taskFactory Factory,
	taskRunner Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskType:    taskType,
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler", "task_type", taskType),
	}
}

// HandleEvent creates the task under the id carried by the event and
// submits it. Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != h.taskType {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	task, err := h.taskFactory.CreateTask(event.TaskID, event.Payload)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"task_id", event.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	h.logger.Debug("submitting task to runner",
		"task_id", task.ID(),
		"event_id", event.ID)
	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"event_id", event.ID)
	return nil
}

var (
	_ events.EventHandler = (*TaskFactoryEventHandler)(nil)
	_ Submitter           = (*TaskRunner)(nil)
)
