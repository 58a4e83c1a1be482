package acquisition

import (
	"time"

	"github.com/charmbracelet/log"
)

// DefaultFailoverTimeout is how long push may stay silent before pull takes over.
const DefaultFailoverTimeout = 5000 * time.Millisecond

// Option configures an [Engine].
type Option func(*Engine)

// WithFailoverTimeout sets the push silence window. Non-positive values keep the default.
func WithFailoverTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.failover = d
		}
	}
}

// WithLogger sets the logger sessions derive their loggers from.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records session outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}
