package services

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// NewHTTPClient returns a client that sends tok as a bearer credential on every request.
//
// A nil tok yields a plain client. timeout zero means no overall deadline, which streaming requests need.
func NewHTTPClient(tok *oauth2.Token, timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	if tok != nil && tok.AccessToken != "" {
		rt = &oauth2.Transport{Source: oauth2.StaticTokenSource(tok), Base: base}
	}

	return &http.Client{Transport: rt, Timeout: timeout}
}
