package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

// envelope is the union of every event shape the backend has produced.
type envelope struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   json.RawMessage `json:"error"`
	Step    *float64        `json:"step"`
	Current *float64        `json:"current"`
	Total   *float64        `json:"total"`
	Data    json.RawMessage `json:"data"`
	Result  json.RawMessage `json:"result"`
	Setlist json.RawMessage `json:"setlist"`
}

// DecodeEvent turns one push payload into a notification.
//
// An error means the payload is not a notification at all. A well-formed
// completion event whose setlist cannot be decoded or is empty becomes a
// malformed-response failure instead.
func DecodeEvent(data []byte) (models.Notification, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return models.Notification{}, fmt.Errorf("%w: empty event payload", shared.ErrMalformedResponse)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.Notification{}, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	switch strings.ToLower(strings.TrimSpace(env.Type)) {
	case "progress", "status":
		step := intValue(env.Step, env.Current)
		total := intValue(env.Total)
		return models.Progress(firstText(env.Message, env.Detail), step, total), nil
	case "complete", "done", "result":
		payload := firstRaw(env.Data, env.Result, env.Setlist)
		s, err := DecodeSetlist(payload)
		if err != nil {
			return models.Fail(models.ReasonMalformedResponse, err.Error()), nil
		}
		if s.Empty() {
			return models.Fail(models.ReasonMalformedResponse, "setlist has no songs"), nil
		}
		return models.Complete(s), nil
	case "error", "failure":
		msg := firstText(env.Message, env.Detail, env.Error)
		if msg == "" {
			msg = "setlist generation failed"
		}
		return models.Fail(models.ReasonUpstream, msg), nil
	case "":
		return models.Notification{}, fmt.Errorf("%w: event has no type", shared.ErrMalformedResponse)
	default:
		return models.Notification{}, fmt.Errorf("%w: unknown event type %q", shared.ErrMalformedResponse, env.Type)
	}
}

// DecodeSetlist accepts a setlist object, a bare array of song titles, or a
// JSON string holding either of those.
func DecodeSetlist(data []byte) (*models.Setlist, error) {
	return decodeSetlist(data, false)
}

func decodeSetlist(data []byte, unwrapped bool) (*models.Setlist, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: missing setlist", shared.ErrMalformedResponse)
	}

	switch data[0] {
	case '"':
		if unwrapped {
			return nil, fmt.Errorf("%w: setlist encoded more than once", shared.ErrMalformedResponse)
		}
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
		return decodeSetlist([]byte(inner), true)
	case '[':
		var songs []string
		if err := json.Unmarshal(data, &songs); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
		return &models.Setlist{Songs: cleanSongs(songs)}, nil
	case '{':
		var s models.Setlist
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
		s.Songs = cleanSongs(s.Songs)
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: unexpected setlist encoding", shared.ErrMalformedResponse)
	}
}

// DecodeDetail extracts the human readable message from an error body.
func DecodeDetail(body []byte) string {
	var env envelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err != nil {
		return ""
	}
	return firstText(env.Detail, env.Message, env.Error)
}

// cleanSongs trims titles and drops blanks, keeping performance order.
func cleanSongs(songs []string) []string {
	out := make([]string, 0, len(songs))
	for _, s := range songs {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstRaw(vals ...json.RawMessage) json.RawMessage {
	for _, v := range vals {
		if len(bytes.TrimSpace(v)) > 0 && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v
		}
	}
	return nil
}

// firstText returns the first non-empty field, rendering non-string JSON as compact text.
func firstText(vals ...json.RawMessage) string {
	for _, v := range vals {
		v = firstRaw(v)
		if v == nil {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			return buf.String()
		}
	}
	return ""
}

func intValue(vals ...*float64) int {
	for _, v := range vals {
		if v != nil {
			return int(*v)
		}
	}
	return 0
}
