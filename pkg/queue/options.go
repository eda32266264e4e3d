package queue

import (
	"github.com/rs/zerolog"

	"github.com/vnykmshr/taskflow/pkg/metrics"
)

// DefaultMailboxSize is the mailbox depth used when none is configured.
const DefaultMailboxSize = 10

type options struct {
	mailboxSize int
	name        string
	logger      zerolog.Logger
	metrics     *metrics.Registry
}

// Option configures a Server.
type Option func(*options)

// WithMailboxSize sets the mailbox depth. Values <= 0 keep the default.
func WithMailboxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.mailboxSize = n
		}
	}
}

// WithName labels the queue in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics enables Prometheus instrumentation on r.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) { o.metrics = r }
}
