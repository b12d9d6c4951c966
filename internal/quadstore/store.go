package quadstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aleksaelezovic/ligature/internal/encoding"
	"github.com/aleksaelezovic/ligature/internal/metrics"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// QuadStore manages collections of statements on top of a Storage,
// indexed six ways per collection.
//
// Any number of read transactions may be open alongside at most one write
// transaction. WriteTx blocks until the current writer finalizes.
type QuadStore struct {
	storage store.Storage
	encoder *encoding.TermEncoder
	decoder *encoding.TermDecoder

	logger         *zap.Logger
	metrics        *metrics.Metrics
	cascadeObjects bool

	writer *semaphore.Weighted
	closed atomic.Bool

	mu       sync.Mutex
	open     map[*view]struct{}
	issued   map[rdf.CollectionName]uint64 // highest identifier handed out per collection
	nextTxID uint64
}

var _ store.Store = (*QuadStore)(nil)

// New creates a QuadStore over storage. The store owns storage from now on
// and closes it on Close.
func New(storage store.Storage, opts ...Option) *QuadStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &QuadStore{
		storage:        storage,
		encoder:        encoding.NewTermEncoder(),
		decoder:        encoding.NewTermDecoder(),
		logger:         o.logger,
		metrics:        o.metrics,
		cascadeObjects: o.cascadeObjects,
		writer:         semaphore.NewWeighted(1),
		open:           make(map[*view]struct{}),
		issued:         make(map[rdf.CollectionName]uint64),
	}
}

// IsOpen reports whether Close has not been called yet
func (s *QuadStore) IsOpen() bool {
	return !s.closed.Load()
}

// ReadTx opens a snapshot of every collection
func (s *QuadStore) ReadTx(ctx context.Context) (store.ReadTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err := s.begin(false)
	if err != nil {
		return nil, err
	}
	return &readTx{view: v}, nil
}

// WriteTx opens the write transaction, waiting for the current one to
// finalize or for ctx to be done
func (s *QuadStore) WriteTx(ctx context.Context) (store.WriteTx, error) {
	if !s.IsOpen() {
		return nil, store.ErrStoreClosed
	}
	if err := s.writer.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire write transaction: %w", err)
	}
	return s.beginWrite()
}

// TryWriteTx opens the write transaction or fails with ErrConcurrency
// if another one is open
func (s *QuadStore) TryWriteTx() (store.WriteTx, error) {
	if !s.IsOpen() {
		return nil, store.ErrStoreClosed
	}
	if !s.writer.TryAcquire(1) {
		return nil, store.ErrConcurrency
	}
	return s.beginWrite()
}

// beginWrite runs with the writer semaphore held
func (s *QuadStore) beginWrite() (store.WriteTx, error) {
	v, err := s.begin(true)
	if err != nil {
		s.writer.Release(1)
		return nil, err
	}
	return &writeTx{view: v}, nil
}

func (s *QuadStore) begin(writable bool) (*view, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, store.ErrStoreClosed
	}

	txn, err := s.storage.Begin(writable)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	s.nextTxID++
	v := newView(s, txn, s.nextTxID, writable)
	s.open[v] = struct{}{}

	s.metrics.TxOpened(v.kind)
	s.logger.Debug("transaction opened", zap.String("kind", v.kind), zap.Uint64("tx", v.id))
	return v, nil
}

// release is called once per view when it reaches a terminal state
func (s *QuadStore) release(v *view, outcome string) {
	s.mu.Lock()
	delete(s.open, v)
	s.mu.Unlock()

	if v.writable {
		s.writer.Release(1)
	}

	s.metrics.TxFinalized(v.kind, outcome)
	s.logger.Debug("transaction finalized",
		zap.String("kind", v.kind),
		zap.Uint64("tx", v.id),
		zap.String("outcome", outcome),
	)
}

// Close cancels every open transaction and closes the storage.
// Subsequent calls on the store or its transactions fail with ErrStoreClosed.
func (s *QuadStore) Close() error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return store.ErrStoreClosed
	}
	s.closed.Store(true)
	views := make([]*view, 0, len(s.open))
	for v := range s.open {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		s.logger.Warn("cancelling open transaction on close",
			zap.String("kind", v.kind),
			zap.Uint64("tx", v.id),
		)
		v.forceCancel()
	}

	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	s.logger.Debug("store closed")
	return nil
}

// reserveEntity returns the next identifier for collection given the
// persisted high-water mark, and remembers it so it is never handed out again
func (s *QuadStore) reserveEntity(collection rdf.CollectionName, persisted uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hwm := max(persisted, s.issued[collection])
	if hwm == ^uint64(0) {
		return 0, fmt.Errorf("entity identifiers exhausted in collection %q", collection)
	}
	s.issued[collection] = hwm + 1
	return hwm + 1, nil
}
