package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/tmaxmax/go-sse"
)

const maxEventSize = 1 << 20

// Push streams notifications from the backend's event stream.
type Push struct {
	client *http.Client
	url    string
	logger *log.Logger
}

// NewPush creates a push adapter for the stream endpoint configured in cfg.
//
// The client must not set an overall timeout; the stream lives as long as the subscription.
func NewPush(client *http.Client, cfg *shared.Config, logger *log.Logger) *Push {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Push{
		client: client,
		url:    cfg.Backend.URL(cfg.Backend.StreamPath),
		logger: logger.With("transport", NamePush),
	}
}

func (p *Push) Name() string { return NamePush }

// Subscribe opens the event stream for artist.
func (p *Push) Subscribe(ctx context.Context, artist models.Artist) Subscription {
	ctx, sub := newSubscription(ctx)
	go p.run(ctx, artist, sub)
	return sub
}

func (p *Push) run(ctx context.Context, artist models.Artist, sub *subscription) {
	defer sub.finish()

	fail := func(err error) {
		if ctx.Err() != nil {
			return
		}
		sub.send(ctx, Frame{Err: fmt.Errorf("%w: %v", shared.ErrTransport, err)})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		fail(fmt.Errorf("failed to create request: %w", err))
		return
	}
	q := req.URL.Query()
	q.Set("artistName", artist.Name)
	if artist.ExternalID != "" {
		q.Set("mbid", artist.ExternalID)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		fail(fmt.Errorf("connect: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fail(fmt.Errorf("unexpected status %s", resp.Status))
		return
	}

	seen := false
	for ev, err := range sse.Read(resp.Body, &sse.ReadConfig{MaxEventSize: maxEventSize}) {
		if err != nil {
			fail(err)
			return
		}
		if ev.Type != "" && ev.Type != "message" {
			p.logger.Debug("skipping named event", "event", ev.Type)
			continue
		}
		if ev.Data == "" {
			continue
		}

		n, err := DecodeEvent([]byte(ev.Data))
		if err != nil {
			if !seen {
				fail(err)
				return
			}
			p.logger.Warn("skipping malformed event", "err", err)
			continue
		}
		seen = true

		p.logger.Debug("event", "notification", n.String())
		if !sub.send(ctx, Frame{Notification: n}) || n.IsTerminal() {
			return
		}
	}

	fail(errors.New("stream closed before a terminal event"))
}
