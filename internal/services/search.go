package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"golang.org/x/time/rate"
)

// SearchService looks up artists for step 0.
//
// Requests are rate limited client side and results are cached when a cache is configured.
type SearchService struct {
	api      *APIService
	path     string
	loginURL string
	limiter  *rate.Limiter
	cache    ArtistCache
	ttl      time.Duration
	logger   *log.Logger
}

type searchEnvelope struct {
	Artists []models.Artist `json:"artists"`
	Artist  []models.Artist `json:"artist"`
}

// NewSearchService creates a search collaborator. cache may be nil.
func NewSearchService(api *APIService, cfg *shared.Config, cache ArtistCache, logger *log.Logger) *SearchService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	burst := cfg.Search.Burst
	if burst < 1 {
		burst = 1
	}

	return &SearchService{
		api:      api,
		path:     cfg.Backend.SearchPath,
		loginURL: cfg.Backend.LoginURL(),
		limiter:  rate.NewLimiter(rate.Limit(cfg.Search.Rate()), burst),
		cache:    cache,
		ttl:      cfg.Search.CacheTTL(),
		logger:   logger,
	}
}

// Search returns artists matching q in backend order.
func (s *SearchService) Search(ctx context.Context, q string) ([]models.Artist, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrInvalidInput)
	}

	if s.cache != nil && s.ttl >= 0 {
		artists, ok, err := s.cache.Get(ctx, q, s.ttl)
		if err != nil {
			s.logger.Warn("artist cache read failed", "err", err)
		} else if ok {
			s.logger.Debug("artist cache hit", "query", q, "results", len(artists))
			return artists, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := s.api.Get(ctx, s.path, url.Values{"q": {q}})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, unauthenticated(resp, s.loginURL)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, q)
	case !resp.OK():
		return nil, fmt.Errorf("%w: %s", shared.ErrUpstream, resp.Detail())
	}

	artists, err := decodeArtists(resp)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl >= 0 {
		if err := s.cache.Put(ctx, q, artists); err != nil {
			s.logger.Warn("artist cache write failed", "err", err)
		}
	}
	return artists, nil
}

// decodeArtists accepts a bare array or an object wrapping it.
func decodeArtists(resp *APIResponse) ([]models.Artist, error) {
	var artists []models.Artist
	if err := resp.Decode(&artists); err == nil {
		return filterArtists(artists), nil
	}

	var env searchEnvelope
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	if env.Artists != nil {
		return filterArtists(env.Artists), nil
	}
	return filterArtists(env.Artist), nil
}

func filterArtists(in []models.Artist) []models.Artist {
	out := make([]models.Artist, 0, len(in))
	for _, a := range in {
		if a.Valid() {
			out = append(out, a)
		}
	}
	return out
}
