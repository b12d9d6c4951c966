package store

import (
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Pattern selects statements by exact match on every non-nil field.
// Nil fields are wildcards; the zero Pattern matches everything.
type Pattern struct {
	Subject   *rdf.Entity
	Predicate *rdf.Predicate
	Object    rdf.Object
	Context   *rdf.Entity
}

// Matches reports whether s satisfies the pattern
func (p Pattern) Matches(s rdf.Statement) bool {
	if p.Subject != nil && *p.Subject != s.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != s.Predicate {
		return false
	}
	if p.Object != nil && !rdf.ObjectsEqual(p.Object, s.Object) {
		return false
	}
	if p.Context != nil && *p.Context != s.Context {
		return false
	}
	return true
}

// RangePattern is a Pattern whose object filter is a Range.
// A nil Range matches any object.
type RangePattern struct {
	Subject   *rdf.Entity
	Predicate *rdf.Predicate
	Range     rdf.Range
	Context   *rdf.Entity
}

// Matches reports whether s satisfies the pattern
func (p RangePattern) Matches(s rdf.Statement) bool {
	if p.Range != nil && !p.Range.Contains(s.Object) {
		return false
	}
	return Pattern{Subject: p.Subject, Predicate: p.Predicate, Context: p.Context}.Matches(s)
}

// RulePattern selects rules by exact match on every non-nil field
type RulePattern struct {
	Subject   *rdf.Entity
	Predicate *rdf.Predicate
	Object    rdf.Object
}

func (p RulePattern) Matches(r rdf.Rule) bool {
	if p.Subject != nil && *p.Subject != r.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != r.Predicate {
		return false
	}
	return p.Object == nil || rdf.ObjectsEqual(p.Object, r.Object)
}

// StatementIterator iterates over statements.
//
//	it, err := tx.AllStatements("people")
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//		s, err := it.Statement()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type StatementIterator interface {
	Next() bool
	Statement() (rdf.Statement, error)
	// Err returns the error that stopped iteration, if any
	Err() error
	Close() error
}

// RuleIterator iterates over rules; it behaves like StatementIterator
type RuleIterator interface {
	Next() bool
	Rule() (rdf.Rule, error)
	Err() error
	Close() error
}

// CollectionIterator iterates over collection names in lexicographic order
type CollectionIterator interface {
	Next() bool
	Collection() rdf.CollectionName
	Err() error
	Close() error
}

// Collect drains a StatementIterator and closes it
func Collect(it StatementIterator) ([]rdf.Statement, error) {
	defer it.Close()

	var statements []rdf.Statement
	for it.Next() {
		s, err := it.Statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, s)
	}
	return statements, it.Err()
}

// CollectCollections drains a CollectionIterator and closes it
func CollectCollections(it CollectionIterator) ([]rdf.CollectionName, error) {
	defer it.Close()

	var names []rdf.CollectionName
	for it.Next() {
		names = append(names, it.Collection())
	}
	return names, it.Err()
}

// CollectRules drains a RuleIterator and closes it
func CollectRules(it RuleIterator) ([]rdf.Rule, error) {
	defer it.Close()

	var rules []rdf.Rule
	for it.Next() {
		r, err := it.Rule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, it.Err()
}
