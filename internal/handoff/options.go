package handoff

import (
	"log/slog"
	"time"

	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
)

// Option configures Provisioner, Processor, Scanner and Service.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	now     func() time.Time
}

func buildOptions(opts []Option) options {
	o := options{
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Nil disables metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithAuditLogger sets the audit logger. Nil disables auditing.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(o *options) {
		o.audit = a
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
