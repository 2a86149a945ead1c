package jobclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/walletstats/internal/redact"
)

// DefaultPollInterval is the interval between status queries.
const DefaultPollInterval = 2000 * time.Millisecond

// Messages are the user-visible texts emitted through the NotificationSink.
type Messages struct {
	SubmissionFailed string
	JobSucceeded     string
	JobFailed        string
	PollingGaveUp    string
}

// DefaultMessages returns the standard notification texts.
func DefaultMessages() Messages {
	return Messages{
		SubmissionFailed: "Refresh could not be started. Please try again.",
		JobSucceeded:     "Wallet statistics refreshed.",
		JobFailed:        "Wallet statistics refresh failed.",
		PollingGaveUp:    "Gave up waiting for the refresh to finish.",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.SubmissionFailed == "" {
		m.SubmissionFailed = d.SubmissionFailed
	}
	if m.JobSucceeded == "" {
		m.JobSucceeded = d.JobSucceeded
	}
	if m.JobFailed == "" {
		m.JobFailed = d.JobFailed
	}
	if m.PollingGaveUp == "" {
		m.PollingGaveUp = d.PollingGaveUp
	}
	return m
}

// PollerConfig tunes polling sessions.
type PollerConfig struct {
	// Interval between ticks. Zero means DefaultPollInterval.
	Interval time.Duration
	// MaxAttempts caps the number of status queries per session.
	// Zero means unlimited.
	MaxAttempts int
	// SerializeTicks runs each query on the tick goroutine so that a slow
	// query delays the next tick instead of overlapping it.
	SerializeTicks bool
	// Messages overrides notification texts. Empty fields keep the defaults.
	Messages Messages
}

// Poller starts polling sessions. At most one session is active per handle.
type Poller struct {
	querier   StatusQuerier
	notifier  NotificationSink
	refresher RefreshTrigger
	config    PollerConfig
	logger    *slog.Logger

	newTicker func(time.Duration) Ticker

	mu       sync.Mutex
	sessions map[JobHandle]*Session
}

// NewPoller creates a Poller.
func NewPoller(
	querier StatusQuerier,
	notifier NotificationSink,
	refresher RefreshTrigger,
	config PollerConfig,
	logger *slog.Logger,
) (*Poller, error) {
	if querier == nil {
		return nil, fmt.Errorf("querier cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if refresher == nil {
		return nil, fmt.Errorf("refresher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if config.Interval < 0 {
		return nil, fmt.Errorf("interval cannot be negative")
	}
	if config.MaxAttempts < 0 {
		return nil, fmt.Errorf("max attempts cannot be negative")
	}
	if config.Interval == 0 {
		config.Interval = DefaultPollInterval
	}
	config.Messages = config.Messages.withDefaults()

	return &Poller{
		querier:   querier,
		notifier:  notifier,
		refresher: refresher,
		config:    config,
		logger:    logger.With("component", "status_poller"),
		newTicker: NewTicker,
		sessions:  make(map[JobHandle]*Session),
	}, nil
}

// Start arms a session for handle. No query is issued until the first tick.
// Cancelling ctx cancels the session.
func (p *Poller) Start(ctx context.Context, handle JobHandle) (*Session, error) {
	if !handle.Valid() {
		return nil, ErrEmptyHandle
	}

	p.mu.Lock()
	if _, ok := p.sessions[handle]; ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, handle)
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		poller: p,
		handle: handle,
		ctx:    sctx,
		cancel: cancel,
		state:  StateArmed,
		done:   make(chan struct{}),
		logger: p.logger.With("task_id", string(handle)),
	}
	s.ticker = p.newTicker(p.config.Interval)
	p.sessions[handle] = s
	p.mu.Unlock()

	s.logger.Debug("polling session armed",
		"interval", p.config.Interval.String(),
		"max_attempts", p.config.MaxAttempts)

	go s.loop()
	return s, nil
}

// Active reports whether a session for handle is running.
func (p *Poller) Active(handle JobHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sessions[handle]
	return ok
}

func (p *Poller) release(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessions[s.handle] == s {
		delete(p.sessions, s.handle)
	}
}

// Session is the polling state for one job handle.
type Session struct {
	poller *Poller
	handle JobHandle
	ticker Ticker
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	err      error
	attempts int

	inflight   sync.WaitGroup // status queries not yet returned
	haltOnce   sync.Once
	finishOnce sync.Once
	done       chan struct{}
}

// Handle returns the job handle being polled.
func (s *Session) Handle() JobHandle {
	return s.handle
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns how many status queries have been issued.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Done is closed once the session is terminal and its notifications
// and refresh have been delivered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the current state and the terminal error, if any.
// ErrJobFailed, ErrPollAttemptsExhausted and ErrCancelled are the possible errors.
func (s *Session) Result() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.err
}

// Wait blocks until the session is terminal and every status query it
// started has returned, or until ctx is done.
func (s *Session) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}

	drained := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return s.Result()
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Cancel tears the session down without a notification. It is a no-op on a
// terminal session and safe to call any number of times.
func (s *Session) Cancel() {
	if !s.transition(StateCancelled, ErrCancelled) {
		return
	}
	s.halt()
	s.logger.Debug("polling session cancelled")
	s.finish()
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.Cancel()
			return
		case <-s.ticker.C():
			s.tick()
		}
	}
}

func (s *Session) tick() {
	cfg := s.poller.config

	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	if cfg.MaxAttempts > 0 && s.attempts >= cfg.MaxAttempts {
		s.mu.Unlock()
		s.giveUp()
		return
	}
	s.attempts++
	attempt := s.attempts
	// Counted under mu so no query starts after the terminal transition
	// that Wait observes.
	s.inflight.Add(1)
	s.mu.Unlock()

	if cfg.SerializeTicks {
		s.query(attempt)
		s.inflight.Done()
		return
	}

	go func() {
		defer s.inflight.Done()
		s.query(attempt)
	}()
}

func (s *Session) query(attempt int) {
	status, err := s.poller.querier.QueryStatus(s.ctx, s.handle)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		var transportErr *PollTransportError
		if !errors.As(err, &transportErr) {
			err = &PollTransportError{Handle: s.handle, Err: err}
		}
		s.logger.Warn("status query failed, treating as pending",
			"attempt", attempt,
			"error", redact.Error(err))
		status = JobStatusPending
	}
	s.observe(status, attempt)
}

// observe classifies one status response. Responses arriving after a
// terminal transition are dropped.
func (s *Session) observe(raw JobStatus, attempt int) {
	status, known := ParseJobStatus(string(raw))

	switch status {
	case JobStatusSuccess:
		if !s.transition(StateSucceeded, nil) {
			s.logger.Debug("dropping status after terminal state", "status", string(status))
			return
		}
		s.halt()
		s.logger.Info("job succeeded", "attempt", attempt)
		s.poller.notifier.Notify(s.poller.config.Messages.JobSucceeded, NotificationSuccess)
		s.poller.refresher.Refresh()
		s.finish()

	case JobStatusFailure:
		if !s.transition(StateFailed, ErrJobFailed) {
			s.logger.Debug("dropping status after terminal state", "status", string(status))
			return
		}
		s.halt()
		s.logger.Warn("job failed", "attempt", attempt)
		s.poller.notifier.Notify(s.poller.config.Messages.JobFailed, NotificationError)
		s.finish()

	default:
		s.mu.Lock()
		if s.state.Terminal() {
			s.mu.Unlock()
			s.logger.Debug("dropping status after terminal state", "status", string(status))
			return
		}
		s.state = StateWaiting
		s.mu.Unlock()
		if !known {
			s.logger.Warn("unrecognised job status, treating as pending",
				"attempt", attempt,
				"status", string(status))
			return
		}
		s.logger.Debug("job pending", "attempt", attempt)
	}
}

func (s *Session) giveUp() {
	if !s.transition(StateFailed, ErrPollAttemptsExhausted) {
		return
	}
	s.halt()
	s.logger.Warn("polling attempts exhausted", "max_attempts", s.poller.config.MaxAttempts)
	s.poller.notifier.Notify(s.poller.config.Messages.PollingGaveUp, NotificationError)
	s.finish()
}

// transition moves a non-terminal session to a terminal state. It returns
// false when the session was already terminal.
func (s *Session) transition(to State, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return false
	}
	s.state = to
	s.err = err
	return true
}

// halt stops the ticker and cancels outstanding queries, exactly once.
func (s *Session) halt() {
	s.haltOnce.Do(func() {
		s.ticker.Stop()
		s.cancel()
	})
}

func (s *Session) finish() {
	s.finishOnce.Do(func() {
		s.poller.release(s)
		close(s.done)
	})
}
