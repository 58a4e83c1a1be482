package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

// GeneratingMessage is the progress text the pull adapter emits before its request.
const GeneratingMessage = "Generating setlist, this can take a few minutes..."

const maxPullBody = 4 << 20

// Pull requests a setlist in one blocking call.
//
// Every outcome, including transport failures, is reported as a terminal notification.
type Pull struct {
	client   *http.Client
	url      string
	loginURL string
	timeout  time.Duration
	logger   *log.Logger
}

type pullRequest struct {
	ArtistName string `json:"artistName"`
	MBID       string `json:"mbid,omitempty"`
}

// NewPull creates a pull adapter for the endpoint configured in cfg.
func NewPull(client *http.Client, cfg *shared.Config, logger *log.Logger) *Pull {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pull{
		client:   client,
		url:      cfg.Backend.URL(cfg.Backend.PullPath),
		loginURL: cfg.Backend.LoginURL(),
		timeout:  cfg.Acquisition.PullTimeout(),
		logger:   logger.With("transport", NamePull),
	}
}

func (p *Pull) Name() string { return NamePull }

// Subscribe emits the synthetic progress notification and then the outcome of the request.
func (p *Pull) Subscribe(ctx context.Context, artist models.Artist) Subscription {
	ctx, sub := newSubscription(ctx)
	go func() {
		defer sub.finish()
		if !sub.send(ctx, Frame{Notification: models.Progress(GeneratingMessage, 0, 1)}) {
			return
		}
		n, ok := p.fetch(ctx, artist)
		if !ok {
			return
		}
		sub.send(ctx, Frame{Notification: n})
	}()
	return sub
}

// fetch performs the request. ok is false when ctx was cancelled by the caller.
func (p *Pull) fetch(ctx context.Context, artist models.Artist) (models.Notification, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(pullRequest{ArtistName: artist.Name, MBID: artist.ExternalID})
	if err != nil {
		return models.Fail(models.ReasonTransport, err.Error()), true
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return models.Fail(models.ReasonTransport, fmt.Sprintf("failed to create request: %v", err)), true
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.Notification{}, false
		}
		return models.Fail(models.ReasonTransport, fmt.Sprintf("request failed: %v", err)), true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPullBody))
	if err != nil {
		if ctx.Err() != nil {
			return models.Notification{}, false
		}
		return models.Fail(models.ReasonTransport, fmt.Sprintf("failed to read response: %v", err)), true
	}
	p.logger.Debug("response", "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		redirect := DecodeDetail(body)
		if redirect == "" {
			redirect = p.loginURL
		}
		return models.Unauthenticated(redirect), true
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		s, err := DecodeSetlist(body)
		if err != nil {
			return models.Fail(models.ReasonMalformedResponse, err.Error()), true
		}
		if s.Empty() {
			return models.Fail(models.ReasonMalformedResponse, "setlist has no songs"), true
		}
		return models.Complete(s), true
	default:
		msg := DecodeDetail(body)
		if msg == "" {
			msg = resp.Status
		}
		return models.Fail(models.ReasonUpstream, msg), true
	}
}
