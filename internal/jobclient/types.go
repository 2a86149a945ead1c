package jobclient

import (
	"context"
	"strings"
)

// JobRequest carries the parameters of the job to submit. A zero value is
// valid for jobs that take no parameters.
type JobRequest struct {
	Address string
}

// JobHandle is the opaque identifier the server assigns to a submitted job.
type JobHandle string

// Valid reports whether the handle can be polled.
func (h JobHandle) Valid() bool {
	return strings.TrimSpace(string(h)) != ""
}

func (h JobHandle) String() string {
	return string(h)
}

// JobStatus is the server-reported state of a job.
type JobStatus string

// Recognised job statuses. Anything else is reported as-is and treated as pending.
const (
	JobStatusPending JobStatus = "pending"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailure JobStatus = "failure"
)

// ParseJobStatus normalises a raw status string. The boolean is false when
// the value is not one of the recognised statuses.
func ParseJobStatus(raw string) (JobStatus, bool) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case JobStatusPending, JobStatusSuccess, JobStatusFailure:
		return status, true
	default:
		return status, false
	}
}

// State is the lifecycle state of a polling Session.
type State string

const (
	// StateArmed means the ticker is scheduled and no status has been observed yet.
	StateArmed State = "armed"
	// StateWaiting means at least one non-terminal status has been observed.
	StateWaiting State = "waiting"
	// StateSucceeded is terminal: the job reported success.
	StateSucceeded State = "succeeded"
	// StateFailed is terminal: the job reported failure or polling gave up.
	StateFailed State = "failed"
	// StateCancelled is terminal: the session was torn down externally.
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further status queries will be issued.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// NotificationKind distinguishes user-visible notifications.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// NotificationSink shows a message to the user. It is fire-and-forget.
type NotificationSink interface {
	Notify(message string, kind NotificationKind)
}

// NotifyFunc adapts a function to NotificationSink.
type NotifyFunc func(message string, kind NotificationKind)

// Notify implements NotificationSink.
func (f NotifyFunc) Notify(message string, kind NotificationKind) {
	f(message, kind)
}

// RefreshTrigger re-renders whatever view depends on the job's result.
// It is invoked exactly once per successful session.
type RefreshTrigger interface {
	Refresh()
}

// RefreshFunc adapts a function to RefreshTrigger.
type RefreshFunc func()

// Refresh implements RefreshTrigger.
func (f RefreshFunc) Refresh() {
	f()
}

// CredentialProvider returns the credential attached to every request.
// It is assumed to be cheap and always available.
type CredentialProvider interface {
	Credential() string
}

// StaticCredential is a CredentialProvider that always returns the same token.
type StaticCredential string

// Credential implements CredentialProvider.
func (c StaticCredential) Credential() string {
	return string(c)
}

// Submitter creates a job and returns its handle.
type Submitter interface {
	Submit(ctx context.Context, req JobRequest) (JobHandle, error)
}

// StatusQuerier performs one status query for a job.
type StatusQuerier interface {
	QueryStatus(ctx context.Context, handle JobHandle) (JobStatus, error)
}
