package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

func TestPush(t *testing.T) {
	artist := models.Artist{Name: "Radiohead", ExternalID: "mb-123"}

	t.Run("streams progress then complete", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/setlist/stream" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("artistName") != "Radiohead" || r.URL.Query().Get("mbid") != "mb-123" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			if r.Header.Get("Accept") != "text/event-stream" {
				t.Errorf("unexpected accept header %q", r.Header.Get("Accept"))
			}
			w.Header().Set("Content-Type", "text/event-stream")
			writeEvents(w,
				`{"type":"progress","message":"Fetching shows","step":1,"total":2}`,
				`{"type":"complete","data":{"songs":["Airbag","Let Down"]}}`,
				`{"type":"progress","message":"never read","step":2,"total":2}`,
			)
		}))
		defer server.Close()

		p := NewPush(server.Client(), testConfig(server.URL), nil)
		frames := collect(t, p.Subscribe(context.Background(), artist))

		if len(frames) != 2 {
			t.Fatalf("expected 2 frames, got %d", len(frames))
		}
		if frames[0].Notification.Kind != models.KindProgress || frames[0].Notification.Step != 1 {
			t.Errorf("unexpected first frame %+v", frames[0])
		}
		if frames[1].Notification.Kind != models.KindComplete || len(frames[1].Notification.Setlist.Songs) != 2 {
			t.Errorf("unexpected terminal frame %+v", frames[1])
		}
	})

	t.Run("malformed first payload is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w, `<html>`, `{"type":"complete","data":["x"]}`)
		}))
		defer server.Close()

		frames := collect(t, NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist))
		if len(frames) != 1 || !errors.Is(frames[0].Err, shared.ErrTransport) {
			t.Fatalf("expected single transport error frame, got %+v", frames)
		}
	})

	t.Run("malformed later payload is skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w,
				`{"type":"progress","step":0,"total":1}`,
				`garbage`,
				`{"type":"heartbeat"}`,
				`{"type":"complete","data":["Karma Police"]}`,
			)
		}))
		defer server.Close()

		frames := collect(t, NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist))
		if len(frames) != 2 {
			t.Fatalf("expected 2 frames, got %d: %+v", len(frames), frames)
		}
		if frames[1].Notification.Kind != models.KindComplete {
			t.Errorf("expected complete, got %+v", frames[1])
		}
	})

	t.Run("named events are skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "event: ping\ndata: connected\n\n")
			fmt.Fprint(w, ": keepalive\n\n")
			fmt.Fprint(w, "event: message\ndata: {\"type\":\"progress\",\"step\":1,\"total\":2}\n\n")
			writeEvents(w, `{"type":"complete","data":["Airbag"]}`)
		}))
		defer server.Close()

		frames := collect(t, NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist))
		if len(frames) != 2 {
			t.Fatalf("expected 2 frames, got %d: %+v", len(frames), frames)
		}
		if frames[0].Err != nil || frames[0].Notification.Kind != models.KindProgress {
			t.Errorf("expected progress after the ping, got %+v", frames[0])
		}
		if frames[1].Notification.Kind != models.KindComplete {
			t.Errorf("expected complete, got %+v", frames[1])
		}
	})

	t.Run("multi-line data is joined", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "data: {\"type\":\"complete\",\r\ndata: \"data\":[\"Airbag\"]}\r\n\r\n")
		}))
		defer server.Close()

		frames := collect(t, NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist))
		if len(frames) != 1 || frames[0].Notification.Kind != models.KindComplete {
			t.Fatalf("expected a complete frame, got %+v", frames)
		}
	})

	t.Run("stream closing before terminal is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w, `{"type":"progress","step":0,"total":3}`)
		}))
		defer server.Close()

		frames := collect(t, NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist))
		if len(frames) != 2 || frames[0].Err != nil || !errors.Is(frames[1].Err, shared.ErrTransport) {
			t.Fatalf("expected progress then transport error, got %+v", frames)
		}
	})

	t.Run("non-200 status is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer server.Close()

		frames := collect(t, NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist))
		if len(frames) != 1 || !errors.Is(frames[0].Err, shared.ErrTransport) {
			t.Fatalf("expected transport error, got %+v", frames)
		}
	})

	t.Run("connect error is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		frames := collect(t, NewPush(nil, testConfig(url), nil).Subscribe(context.Background(), artist))
		if len(frames) != 1 || !errors.Is(frames[0].Err, shared.ErrTransport) {
			t.Fatalf("expected transport error, got %+v", frames)
		}
	})

	t.Run("Close tears down a silent stream", func(t *testing.T) {
		var disconnected atomic.Bool
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
				disconnected.Store(true)
			case <-release:
			}
		}))
		defer server.Close()
		defer close(release)

		sub := NewPush(server.Client(), testConfig(server.URL), nil).Subscribe(context.Background(), artist)
		time.Sleep(50 * time.Millisecond)

		done := make(chan struct{})
		go func() {
			sub.Close()
			sub.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Close blocked")
		}

		if frames := collect(t, sub); len(frames) != 0 {
			t.Errorf("expected no frames after Close, got %+v", frames)
		}

		deadline := time.Now().Add(2 * time.Second)
		for !disconnected.Load() && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if !disconnected.Load() {
			t.Error("server should observe the client disconnect")
		}
	})
}
