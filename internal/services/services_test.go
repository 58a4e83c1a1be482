package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"golang.org/x/oauth2"
)

func validToken(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
}

func testConfig(baseURL string, tok *oauth2.Token) *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Backend.BaseURL = baseURL
	cfg.Session.SetToken(tok)
	cfg.Search.RateLimit = 1000
	return cfg
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("no token is signed out without calling the backend", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
		defer server.Close()

		cfg := testConfig(server.URL, nil)
		status, err := NewAuthService(NewAPIService(server.URL, nil), cfg).CheckAuthenticated(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.Authenticated || status.RedirectURL != server.URL+"/login" {
			t.Errorf("unexpected status %+v", status)
		}
		if calls.Load() != 0 {
			t.Error("backend should not be asked without a token")
		}
	})

	t.Run("expired token is signed out", func(t *testing.T) {
		tok := &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Minute)}
		cfg := testConfig("http://127.0.0.1:1", tok)

		status, err := NewAuthService(NewAPIService(cfg.Backend.BaseURL, nil), cfg).CheckAuthenticated(ctx)
		if err != nil || status.Authenticated {
			t.Errorf("expected signed out, got %+v %v", status, err)
		}
	})

	tests := []struct {
		name       string
		status     int
		body       string
		wantAuthed bool
		wantRedir  string
		wantErr    error
	}{
		{name: "healthy session", status: 200, body: `{"status":"ok","authenticated":true}`, wantAuthed: true},
		{name: "health without flag", status: 200, body: `{"status":"ok"}`, wantAuthed: true},
		{name: "backend says signed out", status: 200, body: `{"status":"ok","authenticated":false}`, wantRedir: "/login"},
		{name: "401 with redirect", status: 401, body: `{"detail":"https://auth/redirect"}`, wantRedir: "https://auth/redirect"},
		{name: "server error", status: 503, body: `{"detail":"down"}`, wantErr: shared.ErrServiceUnavailable},
		{name: "garbage body", status: 200, body: `<html>`, wantErr: shared.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			cfg := testConfig(server.URL, validToken("tok"))
			status, err := NewAuthService(NewAPIService(server.URL, nil), cfg).CheckAuthenticated(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status.Authenticated != tt.wantAuthed {
				t.Errorf("Authenticated = %v, want %v", status.Authenticated, tt.wantAuthed)
			}
			wantRedir := tt.wantRedir
			if wantRedir == "/login" {
				wantRedir = server.URL + "/login"
			}
			if status.RedirectURL != wantRedir {
				t.Errorf("RedirectURL = %q, want %q", status.RedirectURL, wantRedir)
			}
		})
	}

	t.Run("unreachable backend is an error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		cfg := testConfig(url, validToken("tok"))
		if _, err := NewAuthService(NewAPIService(url, nil), cfg).CheckAuthenticated(ctx); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

type memoryCache struct {
	entries map[string][]models.Artist
	gets    int
	puts    int
	err     error
}

func (m *memoryCache) Get(ctx context.Context, query string, ttl time.Duration) ([]models.Artist, bool, error) {
	m.gets++
	if m.err != nil {
		return nil, false, m.err
	}
	a, ok := m.entries[query]
	return a, ok, nil
}

func (m *memoryCache) Put(ctx context.Context, query string, artists []models.Artist) error {
	m.puts++
	if m.entries == nil {
		m.entries = map[string][]models.Artist{}
	}
	m.entries[query] = artists
	return m.err
}

func TestSearchService(t *testing.T) {
	ctx := context.Background()

	newServer := func(t *testing.T, calls *atomic.Int32, status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Path != "/api/searchArtist" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
	}

	t.Run("decodes and caches results", func(t *testing.T) {
		var calls atomic.Int32
		server := newServer(t, &calls, 200, `[{"name":"Genesis","mbid":"mb-1","disambiguation":"English rock band"},{"name":"","mbid":"x"}]`)
		defer server.Close()

		cache := &memoryCache{}
		svc := NewSearchService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), cache, nil)

		artists, err := svc.Search(ctx, " Genesis ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(artists) != 1 || artists[0].ExternalID != "mb-1" {
			t.Errorf("unexpected artists %+v", artists)
		}

		if _, err := svc.Search(ctx, "Genesis"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("second search should hit the cache, backend calls = %d", calls.Load())
		}
	})

	t.Run("wrapped results", func(t *testing.T) {
		var calls atomic.Int32
		server := newServer(t, &calls, 200, `{"artist":[{"name":"Portishead","mbid":"mb-9"}]}`)
		defer server.Close()

		artists, err := NewSearchService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), nil, nil).Search(ctx, "portishead")
		if err != nil || len(artists) != 1 || artists[0].Name != "Portishead" {
			t.Errorf("unexpected result %+v %v", artists, err)
		}
	})

	t.Run("cache errors fall through to the backend", func(t *testing.T) {
		var calls atomic.Int32
		server := newServer(t, &calls, 200, `[{"name":"Genesis","mbid":"mb-1"}]`)
		defer server.Close()

		cache := &memoryCache{err: errors.New("disk full")}
		if _, err := NewSearchService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), cache, nil).Search(ctx, "Genesis"); err != nil {
			t.Fatalf("cache failure should not fail the search: %v", err)
		}
		if calls.Load() != 1 {
			t.Error("backend should be called")
		}
	})

	t.Run("negative ttl disables the cache", func(t *testing.T) {
		var calls atomic.Int32
		server := newServer(t, &calls, 200, `[]`)
		defer server.Close()

		cfg := testConfig(server.URL, nil)
		cfg.Search.CacheTTLMinutes = -1
		cache := &memoryCache{}
		NewSearchService(NewAPIService(server.URL, nil), cfg, cache, nil).Search(ctx, "x")
		if cache.gets != 0 || cache.puts != 0 {
			t.Errorf("cache used: gets=%d puts=%d", cache.gets, cache.puts)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"unauthorized", 401, `{"detail":"https://auth/redirect"}`, shared.ErrUnauthenticated},
			{"not found", 404, `{}`, shared.ErrArtistNotFound},
			{"upstream", 500, `{"detail":"boom"}`, shared.ErrUpstream},
			{"malformed", 200, `{"artists":"nope"}`, shared.ErrMalformedResponse},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var calls atomic.Int32
				server := newServer(t, &calls, tt.status, tt.body)
				defer server.Close()

				_, err := NewSearchService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), nil, nil).Search(ctx, "q")
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		if _, err := NewSearchService(NewAPIService("", nil), shared.DefaultConfig(), nil, nil).Search(ctx, "   "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("empty query: expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rate limiter honours context", func(t *testing.T) {
		var calls atomic.Int32
		server := newServer(t, &calls, 200, `[]`)
		defer server.Close()

		cfg := testConfig(server.URL, nil)
		cfg.Search.RateLimit = 0.001
		svc := NewSearchService(NewAPIService(server.URL, nil), cfg, nil, nil)
		if _, err := svc.Search(ctx, "first"); err != nil {
			t.Fatalf("first search should use the burst: %v", err)
		}

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if _, err := svc.Search(short, "second"); err == nil {
			t.Error("second search should be throttled past the deadline")
		}
		if calls.Load() != 1 {
			t.Errorf("backend calls = %d, want 1", calls.Load())
		}
	})
}

func TestPlaylistService(t *testing.T) {
	ctx := context.Background()
	req := models.PlaylistRequest{ArtistName: "Radiohead", Songs: []string{"Paranoid Android", "Karma Police"}}

	t.Run("creates playlist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/createPlaylist" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var got models.PlaylistRequest
			json.NewDecoder(r.Body).Decode(&got)
			if got.ArtistName != "Radiohead" || len(got.Songs) != 2 || got.Songs[1] != "Karma Police" {
				t.Errorf("unexpected payload %+v", got)
			}
			w.Write([]byte(`{"playlist_url":"https://open.spotify.com/playlist/abc","playlist_name":"Radiohead Setlist","songs_added":2}`))
		}))
		defer server.Close()

		p, err := NewPlaylistService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), nil).Create(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.URL != "https://open.spotify.com/playlist/abc" || p.Name != "Radiohead Setlist" || p.SongsAdded != 2 {
			t.Errorf("unexpected playlist %+v", p)
		}
	})

	t.Run("unauthorized carries redirect", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"https://auth/redirect"}`))
		}))
		defer server.Close()

		_, err := NewPlaylistService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), nil).Create(ctx, req)
		var f *models.Failure
		if !errors.As(err, &f) || f.Reason != models.ReasonUnauthenticated || f.RedirectURL != "https://auth/redirect" {
			t.Errorf("expected unauthenticated failure with redirect, got %v", err)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"upstream detail", 500, `{"detail":"Spotify rejected the request"}`, shared.ErrUpstream},
			{"missing url", 200, `{"playlist_name":"x"}`, shared.ErrMalformedResponse},
			{"garbage", 200, `nope`, shared.ErrMalformedResponse},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				_, err := NewPlaylistService(NewAPIService(server.URL, nil), testConfig(server.URL, nil), nil).Create(ctx, req)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("validates input without calling the backend", func(t *testing.T) {
		svc := NewPlaylistService(NewAPIService("http://127.0.0.1:1", nil), shared.DefaultConfig(), nil)
		for _, r := range []models.PlaylistRequest{{Songs: []string{"a"}}, {ArtistName: "Radiohead"}} {
			if _, err := svc.Create(ctx, r); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("%+v: expected ErrInvalidInput, got %v", r, err)
			}
		}
	})
}
