package models

import (
	"fmt"

	"github.com/desertthunder/setlistify/internal/shared"
)

// NotificationKind enumerates the variants of [Notification].
type NotificationKind int

const (
	KindProgress NotificationKind = iota
	KindComplete
	KindFailure
)

func (k NotificationKind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindComplete:
		return "complete"
	case KindFailure:
		return "failure"
	default:
		return ""
	}
}

// Notification is one event of an acquisition attempt.
//
// Zero or more progress notifications are followed by exactly one complete or failure notification.
type Notification struct {
	Kind    NotificationKind
	Message string   // Progress only
	Step    int      // Progress only, >= 0
	Total   int      // Progress only, >= 1
	Setlist *Setlist // Complete only
	Failure *Failure // Failure only
}

// IsTerminal reports whether n ends an acquisition attempt.
func (n Notification) IsTerminal() bool {
	return n.Kind == KindComplete || n.Kind == KindFailure
}

func (n Notification) String() string {
	switch n.Kind {
	case KindProgress:
		return fmt.Sprintf("progress [%d/%d] %s", n.Step, n.Total, n.Message)
	case KindComplete:
		if n.Setlist == nil {
			return "complete (0 songs)"
		}
		return fmt.Sprintf("complete (%d songs)", len(n.Setlist.Songs))
	case KindFailure:
		return fmt.Sprintf("failure: %v", n.Failure)
	default:
		return "unknown notification"
	}
}

// Progress builds a progress notification, clamping step to >= 0 and total to >= max(step, 1).
func Progress(message string, step, total int) Notification {
	if step < 0 {
		step = 0
	}
	if total < 1 {
		total = 1
	}
	if step > total {
		total = step
	}
	return Notification{Kind: KindProgress, Message: message, Step: step, Total: total}
}

// Complete builds a terminal success notification.
func Complete(s *Setlist) Notification {
	return Notification{Kind: KindComplete, Setlist: s}
}

// Fail builds a terminal failure notification.
func Fail(reason FailureReason, message string) Notification {
	return Notification{Kind: KindFailure, Failure: &Failure{Reason: reason, Message: message}}
}

// Unauthenticated builds a terminal failure carrying the authentication entry point the caller should redirect to.
func Unauthenticated(redirectURL string) Notification {
	return Notification{
		Kind:    KindFailure,
		Failure: &Failure{Reason: ReasonUnauthenticated, Message: "authentication required", RedirectURL: redirectURL},
	}
}

// FailureReason is the taxonomy of terminal acquisition failures.
type FailureReason string

const (
	ReasonUnauthenticated   FailureReason = "unauthenticated"
	ReasonUpstream          FailureReason = "upstream-error"
	ReasonTransport         FailureReason = "transport-error"
	ReasonMalformedResponse FailureReason = "malformed-response"
	ReasonCancelled         FailureReason = "cancelled"
)

// Failure is a terminal acquisition failure. It implements error and unwraps to the matching shared sentinel.
type Failure struct {
	Reason      FailureReason
	Message     string
	RedirectURL string // Set for [ReasonUnauthenticated] when the backend supplied a login entry point
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Message == "" {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

// Unwrap maps the reason onto the shared error taxonomy so callers can use [errors.Is].
func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	switch f.Reason {
	case ReasonUnauthenticated:
		return shared.ErrUnauthenticated
	case ReasonUpstream:
		return shared.ErrUpstream
	case ReasonTransport:
		return shared.ErrTransport
	case ReasonMalformedResponse:
		return shared.ErrMalformedResponse
	case ReasonCancelled:
		return shared.ErrCancelled
	default:
		return nil
	}
}
