package workflow

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/acquisition"
	"github.com/desertthunder/setlistify/internal/models"
)

// Acquirer starts acquisition sessions. [acquisition.Engine] implements it.
type Acquirer interface {
	Acquire(ctx context.Context, artist models.Artist) *acquisition.Session
}

// Listener observes state changes caused by acquisition notifications.
type Listener func(State)

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListener registers fn to be called after every applied notification.
func WithListener(fn Listener) Option {
	return func(c *Controller) {
		c.listener = fn
	}
}

// Controller owns the workflow state. All methods are safe for concurrent use.
type Controller struct {
	ctx      context.Context
	engine   Acquirer
	logger   *log.Logger
	listener Listener

	mu      sync.Mutex
	state   State
	session *acquisition.Session
}

// NewController creates a controller at the initial state. Acquisitions run
// under ctx, so cancelling it stops any in-flight session.
func NewController(ctx context.Context, engine Acquirer, opts ...Option) *Controller {
	c := &Controller{
		ctx:    ctx,
		engine: engine,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Session returns the in-flight acquisition, or nil.
func (c *Controller) Session() *acquisition.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SelectArtist stores the step-0 input and rewinds to step 0.
//
// The setlist is kept only when the same artist is selected again.
func (c *Controller) SelectArtist(a models.Artist) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Complete {
		return c.state.clone()
	}

	c.cancelLocked()
	if c.state.Artist == nil || !c.state.Artist.Same(a) {
		c.state.Setlist = nil
	}
	c.state.Artist = &a
	c.state.Step = StepChooseArtist
	c.state.Progress = nil
	c.state.Failure = nil

	c.logger.Debug("artist selected", "artist", a.String())
	return c.state.clone()
}

// Advance moves to the next step when the current one is ready.
// Entering the preview step starts an acquisition unless a setlist for the
// selected artist is already held.
func (c *Controller) Advance() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Complete || c.state.Step >= LastStep || !c.state.Ready() {
		return c.state.clone()
	}

	c.state.Step++
	if c.state.Step == StepPreviewSetlist && c.state.Setlist.Empty() {
		c.startLocked()
	}

	c.logger.Debug("advanced", "step", c.state.Step)
	return c.state.clone()
}

// Retreat moves back one step. Leaving the preview step cancels its acquisition.
func (c *Controller) Retreat() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Complete || c.state.Step == StepChooseArtist {
		return c.state.clone()
	}

	if c.state.Step == StepPreviewSetlist {
		c.cancelLocked()
		c.state.Progress = nil
		c.state.Failure = nil
	}
	c.state.Step--

	c.logger.Debug("retreated", "step", c.state.Step)
	return c.state.clone()
}

// Retry restarts a failed acquisition on the preview step.
func (c *Controller) Retry() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Complete || c.state.Step != StepPreviewSetlist || c.session != nil || c.state.Failure == nil {
		return c.state.clone()
	}

	c.startLocked()
	return c.state.clone()
}

// CompleteFinalStep marks the workflow complete. It requires the last step and a setlist.
func (c *Controller) CompleteFinalStep() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Step == LastStep && !c.state.Setlist.Empty() {
		c.state.Complete = true
	}
	return c.state.clone()
}

// Reset cancels any acquisition and returns to the initial state.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.state = State{}

	c.logger.Debug("reset")
	return c.state.clone()
}

// Deliver applies n if s is still the controller's session. It reports whether the state changed.
func (c *Controller) Deliver(s *acquisition.Session, n models.Notification) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s == nil || s != c.session {
		c.logger.Debug("dropping stale notification", "n", n.String())
		return c.state.clone(), false
	}

	switch n.Kind {
	case models.KindProgress:
		p := n
		c.state.Progress = &p
	case models.KindComplete:
		c.session = nil
		c.state.Progress = nil
		if n.Setlist.Empty() {
			c.state.Failure = &models.Failure{Reason: models.ReasonMalformedResponse, Message: "setlist has no songs"}
			break
		}
		c.state.Setlist = n.Setlist.Clone()
		c.state.Failure = nil
		if c.state.Step == StepPreviewSetlist {
			c.state.Step = StepCreatePlaylist
		}
		c.logger.Info("setlist ready", "songs", len(c.state.Setlist.Songs))
	case models.KindFailure:
		c.session = nil
		c.state.Progress = nil
		f := *n.Failure
		c.state.Failure = &f
		c.logger.Warn("acquisition failed", "reason", f.Reason, "message", f.Message)
	}

	return c.state.clone(), true
}

// Follow feeds s's notifications into the controller until s ends or ctx is
// done, calling fn with the state after each applied notification.
func (c *Controller) Follow(ctx context.Context, s *acquisition.Session, fn Listener) {
	for {
		n, ok := s.Next(ctx)
		if !ok {
			return
		}

		st, applied := c.Deliver(s, n)
		if applied && fn != nil {
			fn(st)
		}
		if n.IsTerminal() || !applied {
			return
		}
	}
}

func (c *Controller) startLocked() {
	c.cancelLocked()
	c.state.Setlist = nil
	c.state.Progress = nil
	c.state.Failure = nil

	s := c.engine.Acquire(c.ctx, *c.state.Artist)
	c.session = s
	go c.Follow(c.ctx, s, c.listener)
}

func (c *Controller) cancelLocked() {
	if c.session != nil {
		c.session.Cancel()
		c.session = nil
	}
}
