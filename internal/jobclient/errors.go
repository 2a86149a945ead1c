package jobclient

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmission matches every *SubmissionError.
	ErrSubmission = errors.New("job submission failed")

	// ErrMalformedResponse is wrapped by a SubmissionError when the server
	// accepted the job but the response carried no usable job id.
	ErrMalformedResponse = errors.New("malformed submission response")

	// ErrEmptyHandle is returned by Poller.Start for an empty or blank handle.
	ErrEmptyHandle = errors.New("job handle is empty")

	// ErrJobFailed is the session result when the server reports failure.
	ErrJobFailed = errors.New("job failed")

	// ErrPollAttemptsExhausted is the session result when MaxAttempts ticks
	// passed without a terminal status.
	ErrPollAttemptsExhausted = errors.New("poll attempts exhausted")

	// ErrCancelled is the session result after external cancellation.
	ErrCancelled = errors.New("polling cancelled")

	// ErrSessionActive is returned by Poller.Start when the handle is
	// already being polled.
	ErrSessionActive = errors.New("polling session already active")
)

// SubmissionError describes why a job could not be created.
type SubmissionError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message is the server-supplied rejection message, if any.
	Message string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("job submission failed: status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("job submission failed: status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("job submission failed: %v", e.Err)
	default:
		return "job submission failed"
	}
}

// Unwrap returns the underlying cause.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is makes every SubmissionError match ErrSubmission.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmission
}

// PollTransportError describes a status query that did not produce a status.
// It is never fatal to a session.
type PollTransportError struct {
	Handle     JobHandle
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *PollTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status query for job %s failed: status %d: %v", e.Handle, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("status query for job %s failed: %v", e.Handle, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PollTransportError) Unwrap() error {
	return e.Err
}
