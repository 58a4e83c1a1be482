package acquisition

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/desertthunder/setlistify/internal/transport"
)

// Authenticator reports whether the user holds a valid backend session.
type Authenticator interface {
	CheckAuthenticated(ctx context.Context) (models.AuthStatus, error)
}

// Engine starts acquisition sessions. At most one session is active per engine.
type Engine struct {
	auth     Authenticator
	push     transport.Adapter
	pull     transport.Adapter
	failover time.Duration
	logger   *log.Logger
	metrics  *Metrics

	mu     sync.Mutex
	active *Session
}

// New creates an engine that prefers push and falls back to pull.
func New(auth Authenticator, push, pull transport.Adapter, opts ...Option) *Engine {
	e := &Engine{
		auth:     auth,
		push:     push,
		pull:     pull,
		failover: DefaultFailoverTimeout,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FailoverTimeout returns the configured push silence window.
func (e *Engine) FailoverTimeout() time.Duration { return e.failover }

// Acquire cancels the previous session, if any, and starts a new one for artist.
//
// The session lives until it emits a terminal notification, ctx is done, or it is cancelled.
func (e *Engine) Acquire(ctx context.Context, artist models.Artist) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		e.active.Cancel()
	}

	id := shared.GenerateID()
	ctx, cancel := context.WithCancel(ctx)
	s := newSession(id, artist, cancel, shared.WithLogger(e.logger, "session", id[:8], "artist", artist.Name))
	e.active = s

	e.metrics.started()
	go s.run(ctx, e)
	return s
}

// Cancel cancels the active session. It is safe to call at any time.
func (e *Engine) Cancel() {
	e.mu.Lock()
	s := e.active
	e.active = nil
	e.mu.Unlock()

	if s != nil {
		s.Cancel()
	}
}

// Active returns the session started last, or nil after [Engine.Cancel].
func (e *Engine) Active() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}
