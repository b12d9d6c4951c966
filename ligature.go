package ligature

import (
	"fmt"

	"github.com/aleksaelezovic/ligature/internal/metrics"
	"github.com/aleksaelezovic/ligature/internal/quadstore"
	"github.com/aleksaelezovic/ligature/internal/storage"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type options struct {
	logger         *zap.Logger
	registerer     prometheus.Registerer
	cascadeObjects bool
	syncWrites     bool
}

// Option configures Open and OpenInMemory
type Option func(*options)

// WithLogger sets the logger used by the store and its storage engine
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics registers the store's Prometheus collectors with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithObjectCascade controls whether RemoveEntity also removes statements
// that use the entity as object. Enabled by default.
func WithObjectCascade(enabled bool) Option {
	return func(o *options) {
		o.cascadeObjects = enabled
	}
}

// WithSyncWrites makes every commit fsync before returning
func WithSyncWrites(sync bool) Option {
	return func(o *options) {
		o.syncWrites = sync
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:         zap.NewNop(),
		cascadeObjects: true,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Open opens, or creates, a store persisted in dir
func Open(dir string, opts ...Option) (store.Store, error) {
	o := applyOptions(opts)

	s, err := storage.NewBadgerStorage(dir,
		storage.WithLogger(o.logger),
		storage.WithSyncWrites(o.syncWrites),
	)
	if err != nil {
		return nil, err
	}
	return newStore(s, o)
}

// OpenInMemory opens a store whose content is lost on Close
func OpenInMemory(opts ...Option) (store.Store, error) {
	o := applyOptions(opts)

	s, err := storage.NewInMemoryStorage(storage.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return newStore(s, o)
}

func newStore(s store.Storage, o options) (store.Store, error) {
	qopts := []quadstore.Option{
		quadstore.WithLogger(o.logger),
		quadstore.WithObjectCascade(o.cascadeObjects),
	}

	if o.registerer != nil {
		m := metrics.New()
		if err := m.Register(o.registerer); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		qopts = append(qopts, quadstore.WithMetrics(m))
	}

	return quadstore.New(s, qopts...), nil
}
