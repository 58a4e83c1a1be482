package services

import (
	"context"
	"time"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/transport"
)

// ArtistCache stores search results between runs.
type ArtistCache interface {
	Get(ctx context.Context, query string, ttl time.Duration) ([]models.Artist, bool, error)
	Put(ctx context.Context, query string, artists []models.Artist) error
}

// unauthenticated builds the error returned for a 401, pointing at detail or loginURL.
func unauthenticated(resp *APIResponse, loginURL string) error {
	redirect := loginURL
	if resp != nil {
		if d := transport.DecodeDetail(resp.Body); d != "" {
			redirect = d
		}
	}
	return &models.Failure{Reason: models.ReasonUnauthenticated, Message: "authentication required", RedirectURL: redirect}
}
