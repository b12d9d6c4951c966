package quadstore

import (
	"github.com/aleksaelezovic/ligature/internal/metrics"
	"go.uber.org/zap"
)

type options struct {
	logger         *zap.Logger
	metrics        *metrics.Metrics
	cascadeObjects bool
}

func defaultOptions() options {
	return options{
		logger:         zap.NewNop(),
		cascadeObjects: true,
	}
}

// Option configures a QuadStore
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.logger = logger
	}
}

// WithMetrics records transaction and statement metrics into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithObjectCascade controls whether RemoveEntity also removes statements
// that reference the entity as their object. Enabled by default.
func WithObjectCascade(enabled bool) Option {
	return func(o *options) {
		o.cascadeObjects = enabled
	}
}
