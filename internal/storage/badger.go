package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/aleksaelezovic/ligature/pkg/store"
	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Option configures a BadgerStorage
type Option func(*badger.Options)

// WithLogger routes badger's internal logging to logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *badger.Options) {
		if logger == nil {
			o.Logger = nil
			return
		}
		o.Logger = &badgerLogger{logger.Named("badger").Sugar()}
	}
}

// WithSyncWrites makes every commit fsync before returning
func WithSyncWrites(sync bool) Option {
	return func(o *badger.Options) {
		o.SyncWrites = sync
	}
}

// BadgerStorage implements Storage using BadgerDB
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage creates a new BadgerDB-backed storage in dir
func NewBadgerStorage(path string, opts ...Option) (*BadgerStorage, error) {
	return open(badger.DefaultOptions(path), opts)
}

// NewInMemoryStorage creates a BadgerDB-backed storage that never touches disk
func NewInMemoryStorage(opts ...Option) (*BadgerStorage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), opts)
}

func open(bopts badger.Options, opts []Option) (*BadgerStorage, error) {
	bopts.Logger = nil // Disable default logger
	for _, opt := range opts {
		opt(&bopts)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// Begin starts a new transaction
func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	if s.db.IsClosed() {
		return nil, store.ErrStoreClosed
	}
	txn := s.db.NewTransaction(writable)
	return &BadgerTransaction{
		txn:      txn,
		writable: writable,
	}, nil
}

// Close closes the storage
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk
func (s *BadgerStorage) Sync() error {
	return s.db.Sync()
}

// BadgerTransaction implements Transaction using BadgerDB.
// Badger allows a single live iterator per read-write transaction.
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

// Get retrieves a value by key
func (t *BadgerTransaction) Get(table store.Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(store.PrefixKey(table, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return item.ValueCopy(nil)
}

// Set stores a key-value pair
func (t *BadgerTransaction) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}

	return t.txn.Set(store.PrefixKey(table, key), value)
}

// Delete removes a key
func (t *BadgerTransaction) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}

	return t.txn.Delete(store.PrefixKey(table, key))
}

// Scan iterates over every key of the table starting with prefix
func (t *BadgerTransaction) Scan(table store.Table, prefix []byte) (store.Iterator, error) {
	scanPrefix := store.PrefixKey(table, prefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = scanPrefix
	// index entries carry no value; Value reads lazily when asked
	opts.PrefetchValues = false

	return &BadgerIterator{
		it:      t.txn.NewIterator(opts),
		prefix:  store.TablePrefix(table),
		seekKey: scanPrefix,
	}, nil
}

// ScanRange iterates over keys in [start, end)
func (t *BadgerTransaction) ScanRange(table store.Table, start, end []byte) (store.Iterator, error) {
	tablePrefix := store.TablePrefix(table)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = tablePrefix
	opts.PrefetchValues = false

	var endKey []byte
	if end != nil {
		endKey = store.PrefixKey(table, end)
	}

	return &BadgerIterator{
		it:      t.txn.NewIterator(opts),
		prefix:  tablePrefix,
		seekKey: store.PrefixKey(table, start),
		endKey:  endKey,
	}, nil
}

// Commit commits the transaction
func (t *BadgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback rolls back the transaction
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements Iterator using BadgerDB
type BadgerIterator struct {
	it       *badger.Iterator
	prefix   []byte // Table prefix for stripping from keys
	endKey   []byte
	seekKey  []byte
	started  bool
	hasValue bool
	closed   bool
}

// Next advances to the next item
func (i *BadgerIterator) Next() bool {
	if i.closed {
		return false
	}
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}

	if !i.it.Valid() {
		i.hasValue = false
		return false
	}

	// Check if we've reached the end key
	if i.endKey != nil && bytes.Compare(i.it.Item().Key(), i.endKey) >= 0 {
		i.hasValue = false
		return false
	}

	i.hasValue = true
	return true
}

// Key returns a copy of the current key without the table prefix
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}

	key := i.it.Item().KeyCopy(nil)
	if len(key) < len(i.prefix) {
		return nil
	}
	return key[len(i.prefix):]
}

// Value returns the current value
func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}

	return i.it.Item().ValueCopy(nil)
}

// Close closes the iterator. It is safe to call more than once.
func (i *BadgerIterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.hasValue = false
	i.it.Close()
	return nil
}

// badgerLogger adapts zap to badger.Logger
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
