package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/desertthunder/setlistify/internal/transport"
	"golang.org/x/oauth2"
)

// AuthService answers whether the stored backend session can be used.
type AuthService struct {
	api        *APIService
	token      *oauth2.Token
	healthPath string
	loginURL   string
}

type healthResponse struct {
	Status        string `json:"status"`
	Authenticated *bool  `json:"authenticated"`
}

// NewAuthService creates an auth collaborator for the session stored in cfg.
func NewAuthService(api *APIService, cfg *shared.Config) *AuthService {
	return &AuthService{
		api:        api,
		token:      cfg.Session.Token(),
		healthPath: cfg.Backend.HealthPath,
		loginURL:   cfg.Backend.LoginURL(),
	}
}

// LoginURL is where an unauthenticated user is sent.
func (s *AuthService) LoginURL() string { return s.loginURL }

// Token returns the stored credential, or nil.
func (s *AuthService) Token() *oauth2.Token { return s.token }

// CheckAuthenticated validates the stored token locally and then asks the backend.
//
// An error means the question could not be answered, not that the user is signed out.
func (s *AuthService) CheckAuthenticated(ctx context.Context) (models.AuthStatus, error) {
	signedOut := models.AuthStatus{RedirectURL: s.loginURL}

	if s.token == nil || !s.token.Valid() {
		return signedOut, nil
	}

	resp, err := s.api.Get(ctx, s.healthPath, nil)
	if err != nil {
		return models.AuthStatus{}, fmt.Errorf("%w: health check: %w", shared.ErrServiceUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if d := transport.DecodeDetail(resp.Body); d != "" {
			signedOut.RedirectURL = d
		}
		return signedOut, nil
	case resp.OK():
		var health healthResponse
		if err := resp.Decode(&health); err != nil {
			return models.AuthStatus{}, err
		}
		if health.Authenticated != nil && !*health.Authenticated {
			return signedOut, nil
		}
		return models.AuthStatus{Authenticated: true}, nil
	default:
		return models.AuthStatus{}, fmt.Errorf("%w: health check returned %s", shared.ErrServiceUnavailable, resp.Detail())
	}
}
