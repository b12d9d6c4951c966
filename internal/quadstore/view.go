package quadstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aleksaelezovic/ligature/internal/encoding"
	"github.com/aleksaelezovic/ligature/internal/metrics"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// invalidator is an outstanding iterator that must stop when its
// transaction ends
type invalidator interface {
	invalidate()
}

// view is the state shared by read and write transactions: one storage
// transaction plus the iterators reading from it.
//
// mu serializes the owner against Store.Close cancelling the view from
// another goroutine.
type view struct {
	s        *QuadStore
	txn      store.Transaction
	id       uint64
	kind     string
	writable bool

	mu        sync.Mutex
	open      bool
	iterators map[invalidator]struct{}
	strings   map[store.EncodedTerm]store.Term
}

func newView(s *QuadStore, txn store.Transaction, id uint64, writable bool) *view {
	kind := metrics.KindRead
	if writable {
		kind = metrics.KindWrite
	}
	return &view{
		s:         s,
		txn:       txn,
		id:        id,
		kind:      kind,
		writable:  writable,
		open:      true,
		iterators: make(map[invalidator]struct{}),
		strings:   make(map[store.EncodedTerm]store.Term),
	}
}

// check must be called with mu held
func (v *view) check() error {
	if v.s.closed.Load() {
		return store.ErrStoreClosed
	}
	if !v.open {
		return store.ErrTransactionClosed
	}
	return nil
}

func (v *view) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open && !v.s.closed.Load()
}

// finish ends the view with mu held: iterators are invalidated, the
// storage transaction is rolled back and the store is notified
func (v *view) finish(outcome string) {
	for it := range v.iterators {
		it.invalidate()
	}
	v.iterators = nil
	v.strings = nil
	_ = v.txn.Rollback()
	v.open = false
	v.s.release(v, outcome)
}

// cancel implements Cancel for both transaction kinds
func (v *view) cancel() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return err
	}
	v.finish(metrics.OutcomeCancelled)
	return nil
}

func (v *view) forceCancel() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.open {
		v.finish(metrics.OutcomeForced)
	}
}

// trackable is an iterator that can materialize its remaining results
type trackable interface {
	invalidator
	drain() error
}

// track registers it so that finish can invalidate it. Write transactions
// materialize results eagerly since the storage allows only one live
// iterator per read-write transaction.
func (v *view) track(it trackable) error {
	if v.writable {
		if err := it.drain(); err != nil {
			return err
		}
	}
	v.iterators[it] = struct{}{}
	return nil
}

func (v *view) untrack(it invalidator) {
	if v.iterators != nil {
		delete(v.iterators, it)
	}
}

func (v *view) collectionExists(collection rdf.CollectionName) (bool, error) {
	_, err := v.txn.Get(store.TableCollections, []byte(collection))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup collection %q: %w", collection, err)
	}
	return true, nil
}

// CollectionExists reports whether the collection exists in this view
func (v *view) CollectionExists(collection rdf.CollectionName) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return false, err
	}
	return v.collectionExists(collection)
}

// Collections returns every collection in lexicographic order
func (v *view) Collections() (store.CollectionIterator, error) {
	return v.CollectionsPrefix("")
}

// CollectionsPrefix returns the collections whose name starts with prefix
func (v *view) CollectionsPrefix(prefix rdf.CollectionName) (store.CollectionIterator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return nil, err
	}
	it, err := v.txn.Scan(store.TableCollections, []byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	return v.trackCollections(newCollectionIterator(v, it))
}

// CollectionsRange returns the collections in [from, to)
func (v *view) CollectionsRange(from, to rdf.CollectionName) (store.CollectionIterator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return nil, err
	}
	if from >= to {
		return v.trackCollections(newCollectionIterator(v, nil))
	}
	it, err := v.txn.ScanRange(store.TableCollections, []byte(from), []byte(to))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	return v.trackCollections(newCollectionIterator(v, it))
}

func (v *view) trackCollections(it *collectionIterator) (store.CollectionIterator, error) {
	if err := v.track(it); err != nil {
		return nil, err
	}
	return it, nil
}

// AllStatements returns every statement in the collection
func (v *view) AllStatements(collection rdf.CollectionName) (store.StatementIterator, error) {
	return v.MatchStatements(collection, store.Pattern{})
}

// MatchStatements returns the statements matching every bound field of pattern
func (v *view) MatchStatements(collection rdf.CollectionName, pattern store.Pattern) (store.StatementIterator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return nil, err
	}

	q, err := v.s.planPattern(collection, pattern)
	if err != nil {
		return nil, err
	}
	return v.statements(q)
}

// MatchStatementsRange is MatchStatements with a Range as object filter
func (v *view) MatchStatementsRange(collection rdf.CollectionName, pattern store.RangePattern) (store.StatementIterator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return nil, err
	}

	q, err := v.s.planRange(collection, pattern)
	if err != nil {
		return nil, err
	}
	return v.statements(q)
}

// CountStatements returns the number of statements in the collection
func (v *view) CountStatements(collection rdf.CollectionName) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return 0, err
	}

	coll := v.s.encoder.EncodeCollection(collection)
	it, err := v.txn.Scan(store.TableSPOC, coll[:])
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}

	return count, nil
}

// AllRules returns every rule in the collection
func (v *view) AllRules(collection rdf.CollectionName) (store.RuleIterator, error) {
	return v.MatchRules(collection, store.RulePattern{})
}

// MatchRules returns the rules matching every bound field of pattern
func (v *view) MatchRules(collection rdf.CollectionName, pattern store.RulePattern) (store.RuleIterator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.check(); err != nil {
		return nil, err
	}

	q, err := v.s.planRules(collection, pattern)
	if err != nil {
		return nil, err
	}
	it, err := v.execute(q)
	if err != nil {
		return nil, err
	}
	ri := newRuleIterator(v, q, it)
	if err := v.track(ri.keyIterator); err != nil {
		return nil, err
	}
	return ri, nil
}

func (v *view) statements(q *query) (store.StatementIterator, error) {
	it, err := v.execute(q)
	if err != nil {
		return nil, err
	}
	si := newStatementIterator(v, q, it)
	if err := v.track(si.keyIterator); err != nil {
		return nil, err
	}
	return si, nil
}

// execute opens the storage scan for a planned query
func (v *view) execute(q *query) (store.Iterator, error) {
	var (
		it  store.Iterator
		err error
	)
	if q.end != nil {
		it, err = v.txn.ScanRange(q.table, q.start, q.end)
	} else {
		it, err = v.txn.Scan(q.table, q.start)
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", q.table, err)
	}
	return it, nil
}

// decodeTerm decodes an encoded term, resolving hashed strings through id2str
func (v *view) decodeTerm(encoded store.EncodedTerm) (store.Term, error) {
	if !encoding.NeedsLookup(encoded) {
		return v.s.decoder.DecodeTerm(encoded, nil)
	}
	if term, ok := v.strings[encoded]; ok {
		return term, nil
	}

	str, err := v.txn.Get(store.TableID2Str, encoding.StringKey(encoded))
	if err != nil {
		return nil, fmt.Errorf("lookup string for %s term: %w", encoding.GetTermType(encoded), err)
	}
	value := string(str)
	term, err := v.s.decoder.DecodeTerm(encoded, &value)
	if err != nil {
		return nil, err
	}
	v.strings[encoded] = term
	return term, nil
}

// decodeStatement turns the four encoded positions (S, P, O, C) into a Statement
func (v *view) decodeStatement(terms [4]store.EncodedTerm) (rdf.Statement, error) {
	var s rdf.Statement

	subject, err := v.decodeTerm(terms[0])
	if err != nil {
		return s, fmt.Errorf("failed to decode subject: %w", err)
	}
	predicate, err := v.decodeTerm(terms[1])
	if err != nil {
		return s, fmt.Errorf("failed to decode predicate: %w", err)
	}
	object, err := v.decodeTerm(terms[2])
	if err != nil {
		return s, fmt.Errorf("failed to decode object: %w", err)
	}
	context, err := v.decodeTerm(terms[3])
	if err != nil {
		return s, fmt.Errorf("failed to decode context: %w", err)
	}

	var ok bool
	if s.Subject, ok = subject.(rdf.Entity); !ok {
		return s, fmt.Errorf("subject is a %s, not an entity", subject.Type())
	}
	if s.Predicate, ok = predicate.(rdf.Predicate); !ok {
		return s, fmt.Errorf("predicate is a %s", predicate.Type())
	}
	if s.Object, ok = object.(rdf.Object); !ok {
		return s, fmt.Errorf("object is a %s", object.Type())
	}
	if s.Context, ok = context.(rdf.Entity); !ok {
		return s, fmt.Errorf("context is a %s, not an entity", context.Type())
	}
	return s, nil
}

// decodeRule is decodeStatement for rule keys, which have no context
func (v *view) decodeRule(terms [4]store.EncodedTerm) (rdf.Rule, error) {
	var r rdf.Rule

	subject, err := v.decodeTerm(terms[posSubject])
	if err != nil {
		return r, fmt.Errorf("failed to decode subject: %w", err)
	}
	predicate, err := v.decodeTerm(terms[posPredicate])
	if err != nil {
		return r, fmt.Errorf("failed to decode predicate: %w", err)
	}
	object, err := v.decodeTerm(terms[posObject])
	if err != nil {
		return r, fmt.Errorf("failed to decode object: %w", err)
	}

	var ok bool
	if r.Subject, ok = subject.(rdf.Entity); !ok {
		return r, fmt.Errorf("subject is a %s, not an entity", subject.Type())
	}
	if r.Predicate, ok = predicate.(rdf.Predicate); !ok {
		return r, fmt.Errorf("predicate is a %s", predicate.Type())
	}
	if r.Object, ok = object.(rdf.Object); !ok {
		return r, fmt.Errorf("object is a %s", object.Type())
	}
	return r, nil
}
