package acquisition

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
)

const sessionBuffer = 16

// Session is one acquisition attempt for one artist.
type Session struct {
	id     string
	artist models.Artist
	out    chan models.Notification
	done   chan struct{}
	cancel context.CancelFunc
	logger *log.Logger

	mu        sync.Mutex
	transport string
	cancelled bool
	terminal  bool
	failure   *models.Failure
}

func newSession(id string, artist models.Artist, cancel context.CancelFunc, logger *log.Logger) *Session {
	return &Session{
		id:     id,
		artist: artist,
		out:    make(chan models.Notification, sessionBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
		logger: logger,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Artist() models.Artist { return s.artist }

// Transport names the adapter currently in use, or "" before one was started.
func (s *Session) Transport() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

// Done is closed once the session has stopped and released its adapter.
func (s *Session) Done() <-chan struct{} { return s.done }

// Next blocks for the next notification. It returns false once the session
// has ended, was cancelled, or ctx is done.
func (s *Session) Next(ctx context.Context) (models.Notification, bool) {
	if s.isCancelled() {
		return models.Notification{}, false
	}

	select {
	case n, ok := <-s.out:
		if !ok || s.isCancelled() {
			return models.Notification{}, false
		}
		return n, true
	case <-ctx.Done():
		return models.Notification{}, false
	}
}

// Cancel stops the session. Notifications not yet read are dropped.
//
// Cancel never blocks, may be called repeatedly, and does nothing once a
// terminal notification has been emitted.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.terminal {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.mu.Unlock()

	s.cancel()
}

// Err reports how the session ended: nil on success or while running, the
// terminal [models.Failure], or a cancelled failure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		return &models.Failure{Reason: models.ReasonCancelled, Message: "acquisition cancelled"}
	}
	if s.failure != nil {
		return s.failure
	}
	return nil
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *Session) setTransport(name string) {
	s.mu.Lock()
	s.transport = name
	s.mu.Unlock()
}

// emit queues n for the consumer. It returns false when the session was cancelled.
func (s *Session) emit(ctx context.Context, n models.Notification) bool {
	s.mu.Lock()
	if s.cancelled || s.terminal {
		s.mu.Unlock()
		return false
	}
	if n.IsTerminal() {
		s.terminal = true
		s.failure = n.Failure
	}
	s.mu.Unlock()

	select {
	case s.out <- n:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Session) run(ctx context.Context, e *Engine) {
	start := time.Now()
	defer close(s.done)
	defer close(s.out)
	defer s.cancel()

	s.acquire(ctx, e)

	s.mu.Lock()
	if !s.terminal {
		s.cancelled = true
	}
	outcome := OutcomeComplete
	switch {
	case s.cancelled:
		outcome = string(models.ReasonCancelled)
	case s.failure != nil:
		outcome = string(s.failure.Reason)
	}
	used := s.transport
	s.mu.Unlock()

	e.metrics.finished(outcome, used, time.Since(start))
	s.logger.Info("acquisition finished", "outcome", outcome, "transport", used, "elapsed", time.Since(start).Round(time.Millisecond))
}

func (s *Session) acquire(ctx context.Context, e *Engine) {
	status, err := e.auth.CheckAuthenticated(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Error("authentication check failed", "err", err)
		s.emit(ctx, models.Fail(models.ReasonTransport, fmt.Sprintf("authentication check failed: %v", err)))
		return
	}
	if !status.Authenticated {
		s.logger.Info("not authenticated", "redirect", status.RedirectURL)
		s.emit(ctx, models.Unauthenticated(status.RedirectURL))
		return
	}

	s.setTransport(e.push.Name())
	sub := e.push.Subscribe(ctx, s.artist)
	defer func() { sub.Close() }()

	timer := time.NewTimer(e.failover)
	defer timer.Stop()

	timeout := timer.C
	frames := sub.Frames()
	switched := false

	failover := func(cause string, reason any) {
		sub.Close()
		e.metrics.failedOver(cause)
		s.logger.Info("falling back to pull", "cause", cause, "reason", reason)

		s.setTransport(e.pull.Name())
		sub = e.pull.Subscribe(ctx, s.artist)
		frames = sub.Frames()
		switched = true
		timeout = nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-timeout:
			failover(CauseTimeout, e.failover)

		case f, ok := <-frames:
			switch {
			case !ok && switched:
				s.emit(ctx, models.Fail(models.ReasonTransport, "pull ended without an outcome"))
				return
			case !ok:
				failover(CauseClosed, "stream ended")
				continue
			case f.Err != nil && switched:
				s.emit(ctx, models.Fail(models.ReasonTransport, f.Err.Error()))
				return
			case f.Err != nil:
				failover(CauseError, f.Err)
				continue
			}

			if timeout != nil {
				timer.Stop()
				timeout = nil
			}

			s.logger.Debug("notification", "transport", s.Transport(), "n", f.Notification.String())
			if !s.emit(ctx, f.Notification) || f.Notification.IsTerminal() {
				return
			}
		}
	}
}
