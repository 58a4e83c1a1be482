package transport

import (
	"context"

	"github.com/desertthunder/setlistify/internal/models"
)

const (
	NamePush = "push"
	NamePull = "pull"
)

// Frame is one unit of adapter output: either a decoded notification or a transport-level error.
//
// A frame carrying Err is the last frame of its subscription.
type Frame struct {
	Notification models.Notification
	Err          error
}

// Subscription is an active adapter run.
type Subscription interface {
	// Frames is closed once the adapter stops, after a terminal notification, an error or Close.
	Frames() <-chan Frame
	// Close tears the run down. It is idempotent and returns immediately.
	Close()
}

// Adapter starts subscriptions for an artist.
type Adapter interface {
	Name() string
	Subscribe(ctx context.Context, artist models.Artist) Subscription
}

type subscription struct {
	frames chan Frame
	cancel context.CancelFunc
}

func newSubscription(ctx context.Context) (context.Context, *subscription) {
	ctx, cancel := context.WithCancel(ctx)
	return ctx, &subscription{frames: make(chan Frame), cancel: cancel}
}

func (s *subscription) Frames() <-chan Frame { return s.frames }

func (s *subscription) Close() { s.cancel() }

// send hands f to the consumer unless the subscription was closed first.
func (s *subscription) send(ctx context.Context, f Frame) bool {
	select {
	case s.frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish releases the subscription context and closes the frame channel.
func (s *subscription) finish() {
	s.cancel()
	close(s.frames)
}

var (
	_ Adapter = (*Push)(nil)
	_ Adapter = (*Pull)(nil)
)
