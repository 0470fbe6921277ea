package repository

import (
	"context"
	"time"

	"github.com/okian/ideas/pkg/logger"
	"github.com/okian/ideas/pkg/metrics"
)

// Option applies a configuration option to the SQL-backed stores.
type Option func(*storeOptions)

type storeOptions struct {
	logger       logger.Logger
	queryTimeout time.Duration
}

func newStoreOptions(opts []Option) storeOptions {
	o := storeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}
	return o
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithQueryTimeout bounds every query issued by the store. Zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.queryTimeout = d
		}
	}
}

// withTimeout derives a query context honoring the configured timeout.
func (o storeOptions) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.queryTimeout)
}

// observe records the latency of op for driver since start.
func observe(driver, op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(driver, op, float64(time.Since(start).Microseconds())/1000)
}
