package quadstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/aleksaelezovic/ligature/internal/metrics"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"go.uber.org/zap"
)

// writeTx buffers mutations in a read-write storage transaction
type writeTx struct {
	*view

	added   int
	removed int
	minted  int
}

var _ store.WriteTx = (*writeTx)(nil)

// CreateCollection creates an empty collection or does nothing if it exists
func (tx *writeTx) CreateCollection(collection rdf.CollectionName) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}
	return tx.ensureCollection(collection)
}

func (tx *writeTx) ensureCollection(collection rdf.CollectionName) error {
	if _, err := rdf.NewCollectionName(string(collection)); err != nil {
		return err
	}
	exists, err := tx.collectionExists(collection)
	if err != nil || exists {
		return err
	}
	if err := tx.txn.Set(store.TableCollections, []byte(collection), []byte{}); err != nil {
		return fmt.Errorf("create collection %q: %w", collection, err)
	}
	return nil
}

// DeleteCollection removes the collection and all of its statements and rules.
// The entity high-water mark is kept so identifiers are never reused.
func (tx *writeTx) DeleteCollection(collection rdf.CollectionName) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}
	exists, err := tx.collectionExists(collection)
	if err != nil || !exists {
		return err
	}

	coll := tx.s.encoder.EncodeCollection(collection)
	tables := append(append([]store.Table{}, store.StatementTables...), store.RuleTables...)
	for _, table := range tables {
		keys, err := tx.scanKeys(table, coll[:])
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := tx.txn.Delete(table, key); err != nil {
				return fmt.Errorf("delete collection %q: %w", collection, err)
			}
		}
		if table == store.TableSPOC {
			tx.removed += len(keys)
		}
	}

	if err := tx.txn.Delete(store.TableCollections, []byte(collection)); err != nil {
		return fmt.Errorf("delete collection %q: %w", collection, err)
	}
	return nil
}

// scanKeys collects keys before any are modified; only one storage
// iterator may be live in a write transaction
func (tx *writeTx) scanKeys(table store.Table, prefix []byte) ([][]byte, error) {
	it, err := tx.txn.Scan(table, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	defer it.Close()

	var keys [][]byte
	for it.Next() {
		keys = append(keys, it.Key())
	}
	return keys, nil
}

// NewEntity returns an identifier above every identifier issued or
// referenced in the collection so far
func (tx *writeTx) NewEntity(collection rdf.CollectionName) (rdf.Entity, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return rdf.Entity{}, err
	}
	if err := tx.ensureCollection(collection); err != nil {
		return rdf.Entity{}, err
	}

	persisted, err := tx.highWaterMark(collection)
	if err != nil {
		return rdf.Entity{}, err
	}
	id, err := tx.s.reserveEntity(collection, persisted)
	if err != nil {
		return rdf.Entity{}, err
	}
	if err := tx.setHighWaterMark(collection, id); err != nil {
		return rdf.Entity{}, err
	}

	tx.minted++
	return rdf.NewEntity(id), nil
}

func (tx *writeTx) highWaterMark(collection rdf.CollectionName) (uint64, error) {
	value, err := tx.txn.Get(store.TableEntities, []byte(collection))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read entity high-water mark: %w", err)
	}
	if len(value) != 8 {
		return 0, fmt.Errorf("corrupt entity high-water mark for %q", collection)
	}
	return binary.BigEndian.Uint64(value), nil
}

func (tx *writeTx) setHighWaterMark(collection rdf.CollectionName, id uint64) error {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, id)
	if err := tx.txn.Set(store.TableEntities, []byte(collection), value); err != nil {
		return fmt.Errorf("write entity high-water mark: %w", err)
	}
	return nil
}

// raiseHighWaterMark keeps minted identifiers clear of entities supplied by callers
func (tx *writeTx) raiseHighWaterMark(collection rdf.CollectionName, entities []rdf.Entity) error {
	hwm, err := tx.highWaterMark(collection)
	if err != nil {
		return err
	}
	highest := hwm
	for _, e := range entities {
		highest = max(highest, e.ID)
	}
	if highest == hwm {
		return nil
	}
	return tx.setHighWaterMark(collection, highest)
}

// encodeStatement returns the (S, P, O, C) encoding and the strings that
// hashed terms need stored in id2str
func (tx *writeTx) encodeStatement(s rdf.Statement) ([4]store.EncodedTerm, []*string, error) {
	var terms [4]store.EncodedTerm
	if s.Object == nil {
		return terms, nil, fmt.Errorf("statement has no object")
	}
	if err := s.Validate(); err != nil {
		return terms, nil, err
	}
	return tx.encodeTerms(s.Subject, s.Predicate, s.Object, s.Context)
}

// encodeRule is encodeStatement for rules; the context stays zero
func (tx *writeTx) encodeRule(r rdf.Rule) ([4]store.EncodedTerm, []*string, error) {
	if r.Object == nil {
		return [4]store.EncodedTerm{}, nil, fmt.Errorf("rule has no object")
	}
	if err := r.Validate(); err != nil {
		return [4]store.EncodedTerm{}, nil, err
	}
	return tx.encodeTerms(r.Subject, r.Predicate, r.Object)
}

func (tx *writeTx) encodeTerms(positions ...store.Term) ([4]store.EncodedTerm, []*string, error) {
	var terms [4]store.EncodedTerm
	var strs []*string
	for pos, term := range positions {
		encoded, str, err := tx.s.encoder.EncodeTerm(term)
		if err != nil {
			return terms, nil, fmt.Errorf("failed to encode %s: %w", term.Type(), err)
		}
		terms[pos] = encoded
		if str != nil {
			strs = append(strs, str)
		}
	}
	return terms, strs, nil
}

func (tx *writeTx) indexKey(coll store.CollectionKey, table store.Table, terms [4]store.EncodedTerm) []byte {
	order := table.KeyOrder()
	ordered := make([]store.EncodedTerm, len(order))
	for i, pos := range order {
		ordered[i] = terms[pos]
	}
	return tx.s.encoder.EncodeQuadKey(coll, ordered...)
}

// contains reports whether table, the first index of its kind, holds terms
func (tx *writeTx) contains(coll store.CollectionKey, table store.Table, terms [4]store.EncodedTerm) (bool, error) {
	_, err := tx.txn.Get(table, tx.indexKey(coll, table, terms))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddStatement inserts the statement unless it is already present
func (tx *writeTx) AddStatement(collection rdf.CollectionName, statement rdf.Statement) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}
	if err := tx.ensureCollection(collection); err != nil {
		return err
	}

	terms, strs, err := tx.encodeStatement(statement)
	if err != nil {
		return err
	}
	coll := tx.s.encoder.EncodeCollection(collection)
	exists, err := tx.contains(coll, store.TableSPOC, terms)
	if err != nil || exists {
		return err
	}

	for _, str := range strs {
		if err := tx.storeString(*str); err != nil {
			return err
		}
	}

	// Empty value for all index entries
	emptyValue := []byte{}
	for _, table := range store.StatementTables {
		if err := tx.txn.Set(table, tx.indexKey(coll, table, terms), emptyValue); err != nil {
			return err
		}
	}

	if err := tx.raiseHighWaterMark(collection, statement.Entities()); err != nil {
		return err
	}
	tx.added++
	return nil
}

// storeString stores a hashed string in the id2str table
func (tx *writeTx) storeString(value string) error {
	hash := tx.s.encoder.Hash128(value)
	key := hash[:]

	// Check if already exists to avoid unnecessary writes
	_, err := tx.txn.Get(store.TableID2Str, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return tx.txn.Set(store.TableID2Str, key, []byte(value))
}

// RemoveStatement deletes the statement if present
func (tx *writeTx) RemoveStatement(collection rdf.CollectionName, statement rdf.Statement) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}

	terms, _, err := tx.encodeStatement(statement)
	if err != nil {
		return err
	}
	coll := tx.s.encoder.EncodeCollection(collection)
	exists, err := tx.contains(coll, store.TableSPOC, terms)
	if err != nil || !exists {
		return err
	}
	return tx.deleteEncoded(coll, terms)
}

// deleteEncoded removes one statement from every index.
// Strings in id2str are left in place as other statements may use them.
func (tx *writeTx) deleteEncoded(coll store.CollectionKey, terms [4]store.EncodedTerm) error {
	for _, table := range store.StatementTables {
		if err := tx.txn.Delete(table, tx.indexKey(coll, table, terms)); err != nil {
			return err
		}
	}
	tx.removed++
	return nil
}

// RemoveEntity removes every statement with the entity as subject or
// context, and as object when object cascade is enabled. Rules follow the
// same policy for subject and object.
func (tx *writeTx) RemoveEntity(collection rdf.CollectionName, entity rdf.Entity) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}

	coll := tx.s.encoder.EncodeCollection(collection)
	encoded, _, err := tx.s.encoder.EncodeTerm(entity)
	if err != nil {
		return err
	}

	tables := []store.Table{store.TableSPOC, store.TableCSPO}
	if tx.s.cascadeObjects {
		tables = append(tables, store.TableOSPC)
	}

	matches := make(map[[4]store.EncodedTerm]struct{})
	for _, table := range tables {
		keys, err := tx.scanKeys(table, tx.s.encoder.EncodeQuadKey(coll, encoded))
		if err != nil {
			return err
		}
		for _, key := range keys {
			terms, err := splitKey(table, key)
			if err != nil {
				return err
			}
			matches[terms] = struct{}{}
		}
	}

	for terms := range matches {
		if err := tx.deleteEncoded(coll, terms); err != nil {
			return err
		}
	}

	ruleTables := []store.Table{store.TableRuleSPO}
	if tx.s.cascadeObjects {
		ruleTables = append(ruleTables, store.TableRuleOSP)
	}
	rules := make(map[[4]store.EncodedTerm]struct{})
	for _, table := range ruleTables {
		keys, err := tx.scanKeys(table, tx.s.encoder.EncodeQuadKey(coll, encoded))
		if err != nil {
			return err
		}
		for _, key := range keys {
			terms, err := splitKey(table, key)
			if err != nil {
				return err
			}
			rules[terms] = struct{}{}
		}
	}
	for terms := range rules {
		if err := tx.deleteRule(coll, terms); err != nil {
			return err
		}
	}

	if len(matches) > 0 || len(rules) > 0 {
		tx.s.logger.Debug("entity removed",
			zap.String("collection", string(collection)),
			zap.Stringer("entity", entity),
			zap.Int("statements", len(matches)),
			zap.Int("rules", len(rules)),
		)
	}
	return nil
}

// AddRule inserts the rule unless it is already present
func (tx *writeTx) AddRule(collection rdf.CollectionName, rule rdf.Rule) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}
	if err := tx.ensureCollection(collection); err != nil {
		return err
	}

	terms, strs, err := tx.encodeRule(rule)
	if err != nil {
		return err
	}
	coll := tx.s.encoder.EncodeCollection(collection)
	exists, err := tx.contains(coll, store.TableRuleSPO, terms)
	if err != nil || exists {
		return err
	}

	for _, str := range strs {
		if err := tx.storeString(*str); err != nil {
			return err
		}
	}
	for _, table := range store.RuleTables {
		if err := tx.txn.Set(table, tx.indexKey(coll, table, terms), []byte{}); err != nil {
			return err
		}
	}
	return tx.raiseHighWaterMark(collection, rule.Entities())
}

// RemoveRule deletes the rule if present
func (tx *writeTx) RemoveRule(collection rdf.CollectionName, rule rdf.Rule) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return err
	}

	terms, _, err := tx.encodeRule(rule)
	if err != nil {
		return err
	}
	coll := tx.s.encoder.EncodeCollection(collection)
	exists, err := tx.contains(coll, store.TableRuleSPO, terms)
	if err != nil || !exists {
		return err
	}
	return tx.deleteRule(coll, terms)
}

func (tx *writeTx) deleteRule(coll store.CollectionKey, terms [4]store.EncodedTerm) error {
	for _, table := range store.RuleTables {
		if err := tx.txn.Delete(table, tx.indexKey(coll, table, terms)); err != nil {
			return err
		}
	}
	return nil
}

// Commit applies every buffered mutation atomically. A failed commit
// leaves the store as it was and closes the transaction.
func (tx *writeTx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.check(); err != nil {
		return &store.CommitError{Cause: err}
	}

	// Outstanding iterators must be closed before the storage commits
	for it := range tx.iterators {
		it.invalidate()
	}

	start := time.Now()
	if err := tx.txn.Commit(); err != nil {
		tx.s.logger.Error("commit failed", zap.Uint64("tx", tx.id), zap.Error(err))
		tx.finish(metrics.OutcomeFailed)
		return &store.CommitError{Cause: err}
	}
	elapsed := time.Since(start)

	tx.s.metrics.Committed(elapsed.Seconds(), tx.added, tx.removed, tx.minted)
	tx.s.logger.Debug("commit completed",
		zap.Uint64("tx", tx.id),
		zap.Int("added", tx.added),
		zap.Int("removed", tx.removed),
		zap.Int("minted", tx.minted),
		zap.Duration("duration", elapsed),
	)
	tx.finish(metrics.OutcomeCommitted)
	return nil
}

// Cancel discards every buffered mutation
func (tx *writeTx) Cancel() error {
	return tx.cancel()
}
