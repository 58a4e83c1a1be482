package transport

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

func TestDecodeEvent(t *testing.T) {
	t.Run("progress shapes", func(t *testing.T) {
		tests := []struct {
			name      string
			payload   string
			wantMsg   string
			wantStep  int
			wantTotal int
		}{
			{"canonical", `{"type":"progress","message":"Fetching shows","step":2,"total":5}`, "Fetching shows", 2, 5},
			{"status alias with current", `{"type":"status","message":"Working","current":3,"total":4}`, "Working", 3, 4},
			{"missing bounds", `{"type":"progress","message":"Starting"}`, "Starting", 0, 1},
			{"negative step", `{"type":"progress","step":-1,"total":3}`, "", 0, 3},
			{"step beyond total", `{"type":"progress","step":7,"total":3}`, "", 7, 7},
			{"float step", `{"type":"PROGRESS","step":1.0,"total":2.0}`, "", 1, 2},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				n, err := DecodeEvent([]byte(tt.payload))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if n.Kind != models.KindProgress {
					t.Fatalf("expected progress, got %v", n.Kind)
				}
				if n.Message != tt.wantMsg || n.Step != tt.wantStep || n.Total != tt.wantTotal {
					t.Errorf("got %q %d/%d, want %q %d/%d", n.Message, n.Step, n.Total, tt.wantMsg, tt.wantStep, tt.wantTotal)
				}
			})
		}
	})

	t.Run("complete shapes", func(t *testing.T) {
		want := []string{"Airbag", "Paranoid Android"}
		payloads := map[string]string{
			"data object":      `{"type":"complete","data":{"songs":["Airbag","Paranoid Android"]}}`,
			"done alias":       `{"type":"done","result":["Airbag","Paranoid Android"]}`,
			"result alias":     `{"type":"result","setlist":{"songs":["Airbag","Paranoid Android"]}}`,
			"stringified data": `{"type":"complete","data":"{\"songs\":[\"Airbag\",\"Paranoid Android\"]}"}`,
			"blank titles":     `{"type":"complete","data":[" Airbag ","","Paranoid Android"]}`,
		}

		for name, payload := range payloads {
			t.Run(name, func(t *testing.T) {
				n, err := DecodeEvent([]byte(payload))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if n.Kind != models.KindComplete {
					t.Fatalf("expected complete, got %v (%v)", n.Kind, n.Failure)
				}
				if !reflect.DeepEqual(n.Setlist.Songs, want) {
					t.Errorf("songs = %v, want %v", n.Setlist.Songs, want)
				}
			})
		}
	})

	t.Run("complete with shows metadata", func(t *testing.T) {
		n, err := DecodeEvent([]byte(`{"type":"complete","data":{"songs":["Airbag"],"showsMeta":[{"date":"2024-05-01","venue":"O2","city":"London"}]}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(n.Setlist.Shows) != 1 || n.Setlist.Shows[0].City != "London" {
			t.Errorf("unexpected shows %+v", n.Setlist.Shows)
		}
	})

	t.Run("complete without usable setlist is a malformed failure", func(t *testing.T) {
		for _, payload := range []string{
			`{"type":"complete"}`,
			`{"type":"complete","data":{"songs":[]}}`,
			`{"type":"complete","data":42}`,
			`{"type":"complete","data":"\"nested\""}`,
		} {
			n, err := DecodeEvent([]byte(payload))
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", payload, err)
			}
			if n.Kind != models.KindFailure || n.Failure.Reason != models.ReasonMalformedResponse {
				t.Errorf("%s: expected malformed-response failure, got %v", payload, n)
			}
		}
	})

	t.Run("error shapes", func(t *testing.T) {
		tests := map[string]string{
			`{"type":"error","message":"setlist.fm unavailable"}`: "setlist.fm unavailable",
			`{"type":"failure","detail":"quota exceeded"}`:         "quota exceeded",
			`{"type":"error","error":{"code":500}}`:                `{"code":500}`,
			`{"type":"error"}`:                                     "setlist generation failed",
		}
		for payload, want := range tests {
			n, err := DecodeEvent([]byte(payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Failure == nil || n.Failure.Reason != models.ReasonUpstream || n.Failure.Message != want {
				t.Errorf("%s: got %v, want upstream-error %q", payload, n, want)
			}
		}
	})

	t.Run("rejects non-notifications", func(t *testing.T) {
		for _, payload := range []string{``, `   `, `not json`, `{"message":"no type"}`, `{"type":"heartbeat"}`, `[1,2]`} {
			if _, err := DecodeEvent([]byte(payload)); !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("%q: expected ErrMalformedResponse, got %v", payload, err)
			}
		}
	})
}

func TestDecodeSetlist(t *testing.T) {
	t.Run("bare array keeps order", func(t *testing.T) {
		s, err := DecodeSetlist([]byte(`["Paranoid Android","Karma Police"]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(s.Songs, []string{"Paranoid Android", "Karma Police"}) {
			t.Errorf("unexpected songs %v", s.Songs)
		}
	})

	t.Run("string holding an array", func(t *testing.T) {
		s, err := DecodeSetlist([]byte(`"[\"Let Down\"]"`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(s.Songs) != 1 || s.Songs[0] != "Let Down" {
			t.Errorf("unexpected songs %v", s.Songs)
		}
	})

	t.Run("errors", func(t *testing.T) {
		for _, payload := range []string{``, `null`, `true`, `{"songs":"x"}`, `"not json"`} {
			if _, err := DecodeSetlist([]byte(payload)); !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("%q: expected ErrMalformedResponse, got %v", payload, err)
			}
		}
	})
}

func TestDecodeDetail(t *testing.T) {
	tests := map[string]string{
		`{"detail":"https://auth/redirect"}`: "https://auth/redirect",
		`{"message":"bad artist"}`:           "bad artist",
		`{"detail":[{"msg":"field required"}]}`: `[{"msg":"field required"}]`,
		`<html>502</html>`:                    "",
		``:                                    "",
	}
	for body, want := range tests {
		if got := DecodeDetail([]byte(body)); got != want {
			t.Errorf("DecodeDetail(%q) = %q, want %q", body, got, want)
		}
	}
}
