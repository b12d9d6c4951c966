package quadstore

import (
	"fmt"

	"github.com/aleksaelezovic/ligature/internal/encoding"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// Statement positions inside a [4]store.EncodedTerm
const (
	posSubject = iota
	posPredicate
	posObject
	posContext
)

// query is a planned scan over one statement or rule index
type query struct {
	table store.Table
	start []byte
	end   []byte // nil for a prefix scan of start

	// bound holds the encoded value of every exact-match position
	bound [4]*store.EncodedTerm

	// filter is applied to decoded statements
	filter func(rdf.Statement) bool
}

// selectIndex chooses the best index based on which positions are bound
func selectIndex(sBound, pBound, oBound, cBound bool) store.Table {
	if !cBound {
		if sBound && pBound {
			return store.TableSPOC // S, P, O, C
		}
		if pBound && oBound {
			return store.TablePOSC // P, O, S, C
		}
		if oBound && sBound {
			return store.TableOSPC // O, S, P, C
		}
		if sBound {
			return store.TableSPOC
		}
		if pBound {
			return store.TablePOSC
		}
		if oBound {
			return store.TableOSPC
		}
		// Nothing bound, use SPOC
		return store.TableSPOC
	}

	if sBound && pBound {
		return store.TableCSPO // C, S, P, O
	}
	if pBound && oBound {
		return store.TableCPOS // C, P, O, S
	}
	if oBound && sBound {
		return store.TableCOSP // C, O, S, P
	}
	if sBound {
		return store.TableCSPO
	}
	if pBound {
		return store.TableCPOS
	}
	if oBound {
		return store.TableCOSP
	}
	return store.TableCSPO
}

// selectRuleIndex is selectIndex for the context-free rule indexes
func selectRuleIndex(sBound, pBound, oBound bool) store.Table {
	switch selectIndex(sBound, pBound, oBound, false) {
	case store.TablePOSC:
		return store.TableRulePOS
	case store.TableOSPC:
		return store.TableRuleOSP
	default:
		return store.TableRuleSPO
	}
}

// selectRangeIndex chooses an index in which the object directly follows
// the bound positions, so an object range becomes a key range
func selectRangeIndex(sBound, pBound, cBound bool) store.Table {
	if pBound {
		switch {
		case cBound && sBound:
			return store.TableCSPO
		case sBound:
			return store.TableSPOC
		case cBound:
			return store.TableCPOS
		default:
			return store.TablePOSC
		}
	}
	if cBound {
		return store.TableCOSP
	}
	return store.TableOSPC
}

// keyPrefix appends bound terms in the table's key order, stopping at the
// first unbound position or at stopAt
func keyPrefix(enc *encoding.TermEncoder, coll store.CollectionKey, table store.Table, bound [4]*store.EncodedTerm, stopAt int) []byte {
	var terms []store.EncodedTerm
	for _, pos := range table.KeyOrder() {
		if pos == stopAt || bound[pos] == nil {
			break
		}
		terms = append(terms, *bound[pos])
	}
	return enc.EncodeQuadKey(coll, terms...)
}

func (s *QuadStore) encodeBound(term store.Term) (*store.EncodedTerm, error) {
	encoded, _, err := s.encoder.EncodeTerm(term)
	if err != nil {
		return nil, err
	}
	return &encoded, nil
}

// encodePattern encodes the subject, predicate and context filters
func (s *QuadStore) encodePattern(subject *rdf.Entity, predicate *rdf.Predicate, context *rdf.Entity) ([4]*store.EncodedTerm, error) {
	var bound [4]*store.EncodedTerm
	var err error
	if subject != nil {
		if bound[posSubject], err = s.encodeBound(*subject); err != nil {
			return bound, fmt.Errorf("failed to encode subject: %w", err)
		}
	}
	if predicate != nil {
		if !rdf.ValidPredicate(predicate.Name) {
			return bound, &rdf.ValidationError{Kind: "predicate", Value: predicate.Name}
		}
		if bound[posPredicate], err = s.encodeBound(*predicate); err != nil {
			return bound, fmt.Errorf("failed to encode predicate: %w", err)
		}
	}
	if context != nil {
		if bound[posContext], err = s.encodeBound(*context); err != nil {
			return bound, fmt.Errorf("failed to encode context: %w", err)
		}
	}
	return bound, nil
}

func (s *QuadStore) planPattern(collection rdf.CollectionName, pattern store.Pattern) (*query, error) {
	bound, err := s.encodePattern(pattern.Subject, pattern.Predicate, pattern.Context)
	if err != nil {
		return nil, err
	}
	if err := rdf.ValidateObject(pattern.Object); err != nil {
		return nil, err
	}
	if pattern.Object != nil {
		if bound[posObject], err = s.encodeBound(pattern.Object); err != nil {
			return nil, fmt.Errorf("failed to encode object: %w", err)
		}
	}

	table := selectIndex(bound[posSubject] != nil, bound[posPredicate] != nil, bound[posObject] != nil, bound[posContext] != nil)
	coll := s.encoder.EncodeCollection(collection)

	return &query{
		table:  table,
		start:  keyPrefix(s.encoder, coll, table, bound, -1),
		bound:  bound,
		filter: pattern.Matches,
	}, nil
}

func (s *QuadStore) planRange(collection rdf.CollectionName, pattern store.RangePattern) (*query, error) {
	bound, err := s.encodePattern(pattern.Subject, pattern.Predicate, pattern.Context)
	if err != nil {
		return nil, err
	}
	sBound, pBound, cBound := bound[posSubject] != nil, bound[posPredicate] != nil, bound[posContext] != nil
	coll := s.encoder.EncodeCollection(collection)

	q := &query{bound: bound, filter: pattern.Matches}

	from, to, ordered := orderedBounds(pattern.Range)
	if !ordered {
		q.table = selectIndex(sBound, pBound, false, cBound)
		q.start = keyPrefix(s.encoder, coll, q.table, bound, -1)
		return q, nil
	}

	q.table = selectRangeIndex(sBound, pBound, cBound)
	prefix := keyPrefix(s.encoder, coll, q.table, bound, posObject)
	q.start = append(append([]byte{}, prefix...), from[:]...)
	q.end = append(append([]byte{}, prefix...), to[:]...)
	return q, nil
}

func (s *QuadStore) planRules(collection rdf.CollectionName, pattern store.RulePattern) (*query, error) {
	bound, err := s.encodePattern(pattern.Subject, pattern.Predicate, nil)
	if err != nil {
		return nil, err
	}
	if err := rdf.ValidateObject(pattern.Object); err != nil {
		return nil, err
	}
	if pattern.Object != nil {
		if bound[posObject], err = s.encodeBound(pattern.Object); err != nil {
			return nil, fmt.Errorf("failed to encode object: %w", err)
		}
	}

	table := selectRuleIndex(bound[posSubject] != nil, bound[posPredicate] != nil, bound[posObject] != nil)
	coll := s.encoder.EncodeCollection(collection)

	return &query{
		table: table,
		start: keyPrefix(s.encoder, coll, table, bound, -1),
		bound: bound,
	}, nil
}

// orderedBounds returns the encoded bounds of ranges whose encoding
// preserves numeric order
func orderedBounds(r rdf.Range) (from, to store.EncodedTerm, ok bool) {
	switch r := r.(type) {
	case rdf.LongLiteralRange:
		return encoding.EncodeLong(r.From), encoding.EncodeLong(r.To), true
	case rdf.DoubleLiteralRange:
		return encoding.EncodeDouble(r.From), encoding.EncodeDouble(r.To), true
	default:
		return from, to, false
	}
}

// splitKey extracts the (S, P, O, C) terms from an index key. Rule keys
// leave the context zero.
func splitKey(table store.Table, key []byte) ([4]store.EncodedTerm, error) {
	var terms [4]store.EncodedTerm
	order := table.KeyOrder()
	if len(key) != len(store.CollectionKey{})+len(order)*store.EncodedTermSize {
		return terms, fmt.Errorf("invalid key length: %d", len(key))
	}

	offset := len(store.CollectionKey{})
	for _, pos := range order {
		copy(terms[pos][:], key[offset:offset+store.EncodedTermSize])
		offset += store.EncodedTermSize
	}
	return terms, nil
}

// keyIterator decodes the index keys of one storage scan into values of
// T, or replays materialized results once drained
type keyIterator[T any] struct {
	v      *view
	q      *query
	it     store.Iterator
	decode func([4]store.EncodedTerm) (T, error)
	filter func(T) bool

	items        []T
	pos          int
	materialized bool

	current T
	err     error
	closed  bool
}

// statementIterator implements store.StatementIterator
type statementIterator struct {
	*keyIterator[rdf.Statement]
}

func newStatementIterator(v *view, q *query, it store.Iterator) statementIterator {
	return statementIterator{&keyIterator[rdf.Statement]{
		v: v, q: q, it: it, decode: v.decodeStatement, filter: q.filter,
	}}
}

func (si statementIterator) Statement() (rdf.Statement, error) {
	return si.value()
}

// ruleIterator implements store.RuleIterator. Every rule filter is an
// exact match, so bound positions alone select the results.
type ruleIterator struct {
	*keyIterator[rdf.Rule]
}

func newRuleIterator(v *view, q *query, it store.Iterator) ruleIterator {
	return ruleIterator{&keyIterator[rdf.Rule]{v: v, q: q, it: it, decode: v.decodeRule}}
}

func (ri ruleIterator) Rule() (rdf.Rule, error) {
	return ri.value()
}

func (ki *keyIterator[T]) Next() bool {
	ki.v.mu.Lock()
	defer ki.v.mu.Unlock()

	if ki.closed || ki.err != nil {
		return false
	}
	if ki.materialized {
		if ki.pos >= len(ki.items) {
			return false
		}
		ki.current = ki.items[ki.pos]
		ki.pos++
		return true
	}
	return ki.advance()
}

// advance must be called with v.mu held
func (ki *keyIterator[T]) advance() bool {
	for ki.it.Next() {
		terms, err := splitKey(ki.q.table, ki.it.Key())
		if err != nil {
			ki.err = err
			return false
		}
		if !ki.boundMatch(terms) {
			continue
		}

		value, err := ki.decode(terms)
		if err != nil {
			ki.err = err
			return false
		}
		if ki.filter != nil && !ki.filter(value) {
			continue
		}

		ki.current = value
		return true
	}
	return false
}

func (ki *keyIterator[T]) boundMatch(terms [4]store.EncodedTerm) bool {
	for pos, b := range ki.q.bound {
		if b != nil && *b != terms[pos] {
			return false
		}
	}
	return true
}

// drain materializes every remaining result and releases the storage iterator
func (ki *keyIterator[T]) drain() error {
	for ki.advance() {
		ki.items = append(ki.items, ki.current)
	}
	_ = ki.it.Close()
	ki.it = nil
	ki.materialized = true
	return ki.err
}

func (ki *keyIterator[T]) value() (T, error) {
	ki.v.mu.Lock()
	defer ki.v.mu.Unlock()

	var zero T
	if ki.closed {
		if ki.err != nil {
			return zero, ki.err
		}
		return zero, fmt.Errorf("iterator closed")
	}
	return ki.current, nil
}

func (ki *keyIterator[T]) Err() error {
	ki.v.mu.Lock()
	defer ki.v.mu.Unlock()
	return ki.err
}

func (ki *keyIterator[T]) Close() error {
	ki.v.mu.Lock()
	defer ki.v.mu.Unlock()

	if ki.closed {
		return nil
	}
	ki.release()
	ki.v.untrack(ki)
	return nil
}

func (ki *keyIterator[T]) release() {
	ki.closed = true
	ki.items = nil
	if ki.it != nil {
		_ = ki.it.Close()
		ki.it = nil
	}
}

// invalidate is called by the view with v.mu held
func (ki *keyIterator[T]) invalidate() {
	if ki.closed {
		return
	}
	ki.release()
	if ki.err == nil {
		ki.err = closedError(ki.v)
	}
}

func closedError(v *view) error {
	if v.s.closed.Load() {
		return store.ErrStoreClosed
	}
	return store.ErrTransactionClosed
}

// collectionIterator implements store.CollectionIterator
type collectionIterator struct {
	v  *view
	it store.Iterator // nil for an empty result

	items        []rdf.CollectionName
	pos          int
	materialized bool

	current rdf.CollectionName
	err     error
	closed  bool
}

func newCollectionIterator(v *view, it store.Iterator) *collectionIterator {
	ci := &collectionIterator{v: v, it: it}
	if it == nil {
		ci.materialized = true
	}
	return ci
}

func (ci *collectionIterator) Next() bool {
	ci.v.mu.Lock()
	defer ci.v.mu.Unlock()

	if ci.closed || ci.err != nil {
		return false
	}
	if ci.materialized {
		if ci.pos >= len(ci.items) {
			return false
		}
		ci.current = ci.items[ci.pos]
		ci.pos++
		return true
	}
	return ci.advance()
}

func (ci *collectionIterator) advance() bool {
	if !ci.it.Next() {
		return false
	}
	ci.current = rdf.CollectionName(ci.it.Key())
	return true
}

func (ci *collectionIterator) drain() error {
	if ci.materialized {
		return nil
	}
	for ci.advance() {
		ci.items = append(ci.items, ci.current)
	}
	_ = ci.it.Close()
	ci.it = nil
	ci.materialized = true
	return nil
}

func (ci *collectionIterator) Collection() rdf.CollectionName {
	ci.v.mu.Lock()
	defer ci.v.mu.Unlock()
	return ci.current
}

func (ci *collectionIterator) Err() error {
	ci.v.mu.Lock()
	defer ci.v.mu.Unlock()
	return ci.err
}

func (ci *collectionIterator) Close() error {
	ci.v.mu.Lock()
	defer ci.v.mu.Unlock()

	if ci.closed {
		return nil
	}
	ci.release()
	ci.v.untrack(ci)
	return nil
}

func (ci *collectionIterator) release() {
	ci.closed = true
	ci.items = nil
	if ci.it != nil {
		_ = ci.it.Close()
		ci.it = nil
	}
}

func (ci *collectionIterator) invalidate() {
	if ci.closed {
		return
	}
	ci.release()
	if ci.err == nil {
		ci.err = closedError(ci.v)
	}
}
