package transport

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/setlistify/internal/shared"
)

func testConfig(baseURL string) *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Backend.BaseURL = baseURL
	return cfg
}

// collect drains sub until its channel closes.
func collect(t *testing.T, sub Subscription) []Frame {
	t.Helper()

	var frames []Frame
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f, ok := <-sub.Frames():
			if !ok {
				return frames
			}
			frames = append(frames, f)
		case <-timeout:
			t.Fatalf("subscription did not finish, got %d frames", len(frames))
			return nil
		}
	}
}

// writeEvents writes each payload as an SSE message and flushes.
func writeEvents(w http.ResponseWriter, payloads ...string) {
	for _, p := range payloads {
		fmt.Fprintf(w, "data: %s\n\n", p)
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
