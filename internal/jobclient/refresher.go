package jobclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/walletstats/internal/redact"
)

// Refresher drives one job from submission to a terminal outcome.
type Refresher struct {
	submitter Submitter
	poller    *Poller
	notifier  NotificationSink
	messages  Messages
	logger    *slog.Logger
}

// NewRefresher creates a Refresher. Notification texts are taken from the
// poller's configuration.
func NewRefresher(
	submitter Submitter,
	poller *Poller,
	notifier NotificationSink,
	logger *slog.Logger,
) (*Refresher, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}
	if poller == nil {
		return nil, fmt.Errorf("poller cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Refresher{
		submitter: submitter,
		poller:    poller,
		notifier:  notifier,
		messages:  poller.config.Messages,
		logger:    logger.With("component", "refresher"),
	}, nil
}

// Run submits req and waits for the job to finish. A submission failure
// produces one error notification and no polling session. Cancelling ctx
// cancels the session and returns StateCancelled.
func (r *Refresher) Run(ctx context.Context, req JobRequest) (State, error) {
	handle, err := r.submitter.Submit(ctx, req)
	if err == nil && !handle.Valid() {
		err = &SubmissionError{Err: fmt.Errorf("%w: empty task_id", ErrMalformedResponse)}
	}
	if err != nil {
		r.logger.Warn("refresh not started", "error", redact.Error(err))
		r.notifier.Notify(r.messages.SubmissionFailed, NotificationError)
		return StateFailed, err
	}

	session, err := r.poller.Start(ctx, handle)
	if err != nil {
		r.logger.Warn("polling not started", "task_id", string(handle), "error", err)
		r.notifier.Notify(r.messages.SubmissionFailed, NotificationError)
		return StateFailed, err
	}

	<-session.Done()
	return session.Result()
}
