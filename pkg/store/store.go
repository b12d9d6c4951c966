package store

import (
	"context"
	"fmt"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Store issues transactions over a set of collections. A Store is safe
// for concurrent use; the transactions it returns are not.
type Store interface {
	// ReadTx opens a read-only snapshot of every collection
	ReadTx(ctx context.Context) (ReadTx, error)

	// WriteTx opens the single write transaction, blocking while another
	// one is open or until ctx is done
	WriteTx(ctx context.Context) (WriteTx, error)

	// TryWriteTx is WriteTx without waiting; it returns ErrConcurrency
	// while another write transaction is open
	TryWriteTx() (WriteTx, error)

	// Close cancels every open transaction and releases the storage
	Close() error

	IsOpen() bool
}

// ReadTx is a non-mutating view of one snapshot
type ReadTx interface {
	// Collections returns every collection
	Collections() (CollectionIterator, error)

	// CollectionsPrefix returns the collections whose name starts with prefix
	CollectionsPrefix(prefix rdf.CollectionName) (CollectionIterator, error)

	// CollectionsRange returns the collections in [from, to)
	CollectionsRange(from, to rdf.CollectionName) (CollectionIterator, error)

	CollectionExists(collection rdf.CollectionName) (bool, error)

	// AllStatements returns every statement in the collection
	AllStatements(collection rdf.CollectionName) (StatementIterator, error)

	MatchStatements(collection rdf.CollectionName, pattern Pattern) (StatementIterator, error)

	MatchStatementsRange(collection rdf.CollectionName, pattern RangePattern) (StatementIterator, error)

	CountStatements(collection rdf.CollectionName) (int64, error)

	// AllRules returns every rule in the collection
	AllRules(collection rdf.CollectionName) (RuleIterator, error)

	MatchRules(collection rdf.CollectionName, pattern RulePattern) (RuleIterator, error)

	// Cancel releases the snapshot and invalidates outstanding iterators
	Cancel() error

	IsOpen() bool
}

// WriteTx buffers mutations until Commit. Reads observe the
// transaction's own writes.
type WriteTx interface {
	ReadTx

	// CreateCollection creates an empty collection; existing collections are left as is
	CreateCollection(collection rdf.CollectionName) error

	// DeleteCollection removes the collection with its statements and rules; missing collections are ignored
	DeleteCollection(collection rdf.CollectionName) error

	// NewEntity returns an identifier never issued before in the collection
	NewEntity(collection rdf.CollectionName) (rdf.Entity, error)

	// RemoveEntity removes every statement and rule referencing the entity
	RemoveEntity(collection rdf.CollectionName, entity rdf.Entity) error

	AddStatement(collection rdf.CollectionName, statement rdf.Statement) error

	RemoveStatement(collection rdf.CollectionName, statement rdf.Statement) error

	// AddRule inserts the rule unless it is already present
	AddRule(collection rdf.CollectionName, rule rdf.Rule) error

	RemoveRule(collection rdf.CollectionName, rule rdf.Rule) error

	// Commit applies every buffered mutation atomically
	Commit() error
}

// Compute runs fn against a fresh snapshot and always cancels it afterwards
func Compute[T any](ctx context.Context, s Store, fn func(ReadTx) (T, error)) (T, error) {
	var zero T

	tx, err := s.ReadTx(ctx)
	if err != nil {
		return zero, err
	}
	defer func() {
		if tx.IsOpen() {
			_ = tx.Cancel()
		}
	}()

	return fn(tx)
}

// Write runs fn inside a write transaction. The transaction is committed
// when fn returns nil and cancelled when fn fails or panics.
func Write(ctx context.Context, s Store, fn func(WriteTx) error) (err error) {
	tx, err := s.WriteTx(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed && tx.IsOpen() {
			if cerr := tx.Cancel(); cerr != nil && err == nil {
				err = fmt.Errorf("cancel write transaction: %w", cerr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	committed = true
	if !tx.IsOpen() {
		return nil
	}
	return tx.Commit()
}
