package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

// PlaylistService submits a setlist to create a playlist. It never retries.
type PlaylistService struct {
	api      *APIService
	path     string
	loginURL string
	logger   *log.Logger
}

// NewPlaylistService creates the playlist collaborator.
func NewPlaylistService(api *APIService, cfg *shared.Config, logger *log.Logger) *PlaylistService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistService{
		api:      api,
		path:     cfg.Backend.PlaylistPath,
		loginURL: cfg.Backend.LoginURL(),
		logger:   logger,
	}
}

// Create creates a playlist named after the artist containing req.Songs in order.
func (s *PlaylistService) Create(ctx context.Context, req models.PlaylistRequest) (*models.Playlist, error) {
	if strings.TrimSpace(req.ArtistName) == "" {
		return nil, fmt.Errorf("%w: artist name is required", shared.ErrInvalidInput)
	}
	if len(req.Songs) == 0 {
		return nil, fmt.Errorf("%w: setlist has no songs", shared.ErrInvalidInput)
	}

	resp, err := s.api.PostJSON(ctx, s.path, req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, unauthenticated(resp, s.loginURL)
	case !resp.OK():
		return nil, fmt.Errorf("%w: %s", shared.ErrUpstream, resp.Detail())
	}

	var playlist models.Playlist
	if err := resp.Decode(&playlist); err != nil {
		return nil, err
	}
	if playlist.URL == "" {
		return nil, fmt.Errorf("%w: response has no playlist_url", shared.ErrMalformedResponse)
	}

	s.logger.Info("playlist created", "name", playlist.Name, "songs", len(req.Songs))
	return &playlist, nil
}
