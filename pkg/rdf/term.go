package rdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TermType represents the type of a term
type TermType byte

const (
	TermTypeEntity TermType = iota + 1
	TermTypePredicate

	// Literal subtypes
	TermTypeStringLiteral
	TermTypeLangStringLiteral
	TermTypeBooleanLiteral
	TermTypeLongLiteral
	TermTypeDoubleLiteral
)

func (t TermType) String() string {
	switch t {
	case TermTypeEntity:
		return "entity"
	case TermTypePredicate:
		return "predicate"
	case TermTypeStringLiteral:
		return "string"
	case TermTypeLangStringLiteral:
		return "langString"
	case TermTypeBooleanLiteral:
		return "boolean"
	case TermTypeLongLiteral:
		return "long"
	case TermTypeDoubleLiteral:
		return "double"
	default:
		return "unknown"
	}
}

// Object is the right-hand side of a Statement: an Entity or a Literal.
type Object interface {
	Type() TermType
	String() string
	object()
}

// Literal is one of LangLiteral, StringLiteral, BooleanLiteral, LongLiteral or DoubleLiteral.
type Literal interface {
	Object
	literal()
}

// Entity is an opaque numeric identifier.
type Entity struct {
	ID uint64
}

// NewEntity returns the entity with the given identifier
func NewEntity(id uint64) Entity {
	return Entity{ID: id}
}

// ParseEntity parses the textual form _:NUMBER
func ParseEntity(s string) (Entity, error) {
	rest, ok := strings.CutPrefix(s, "_:")
	if !ok || rest == "" {
		return Entity{}, &ValidationError{Kind: "entity", Value: s}
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return Entity{}, &ValidationError{Kind: "entity", Value: s}
	}
	return Entity{ID: id}, nil
}

func (e Entity) Type() TermType { return TermTypeEntity }

func (e Entity) String() string {
	return "_:" + strconv.FormatUint(e.ID, 10)
}

func (Entity) object() {}

// Predicate identifies the relation of a Statement.
type Predicate struct {
	Name string
}

// NewPredicate validates name and returns a Predicate
func NewPredicate(name string) (Predicate, error) {
	if !ValidPredicate(name) {
		return Predicate{}, &ValidationError{Kind: "predicate", Value: name}
	}
	return Predicate{Name: name}, nil
}

// MustPredicate is like NewPredicate but panics on an invalid name.
func MustPredicate(name string) Predicate {
	p, err := NewPredicate(name)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Predicate) Type() TermType { return TermTypePredicate }

func (p Predicate) String() string { return p.Name }

// LangLiteral is a string tagged with a language
type LangLiteral struct {
	Value   string
	LangTag string
}

// NewLangLiteral validates the language tag and returns a LangLiteral
func NewLangLiteral(value, langTag string) (LangLiteral, error) {
	if !ValidLangTag(langTag) {
		return LangLiteral{}, &ValidationError{Kind: "lang tag", Value: langTag}
	}
	return LangLiteral{Value: value, LangTag: langTag}, nil
}

func (l LangLiteral) Type() TermType { return TermTypeLangStringLiteral }

func (l LangLiteral) String() string {
	return strconv.Quote(l.Value) + "@" + l.LangTag
}

func (LangLiteral) object()  {}
func (LangLiteral) literal() {}

// StringLiteral is a plain string
type StringLiteral string

func (s StringLiteral) Type() TermType { return TermTypeStringLiteral }

func (s StringLiteral) String() string { return strconv.Quote(string(s)) }

func (StringLiteral) object()  {}
func (StringLiteral) literal() {}

// BooleanLiteral is a boolean value
type BooleanLiteral bool

func (b BooleanLiteral) Type() TermType { return TermTypeBooleanLiteral }

func (b BooleanLiteral) String() string { return strconv.FormatBool(bool(b)) }

func (BooleanLiteral) object()  {}
func (BooleanLiteral) literal() {}

// LongLiteral is a 64-bit signed integer
type LongLiteral int64

func (l LongLiteral) Type() TermType { return TermTypeLongLiteral }

func (l LongLiteral) String() string { return strconv.FormatInt(int64(l), 10) }

func (LongLiteral) object()  {}
func (LongLiteral) literal() {}

// DoubleLiteral is a 64-bit float
type DoubleLiteral float64

func (d DoubleLiteral) Type() TermType { return TermTypeDoubleLiteral }

// String always yields a token that reads back as a double, never as a long.
func (d DoubleLiteral) String() string {
	v := float64(d)
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (DoubleLiteral) object()  {}
func (DoubleLiteral) literal() {}

// CollectionName identifies an independent set of statements
type CollectionName string

// NewCollectionName rejects the empty name
func NewCollectionName(name string) (CollectionName, error) {
	if name == "" {
		return "", &ValidationError{Kind: "collection name", Value: name}
	}
	return CollectionName(name), nil
}

func (c CollectionName) String() string { return string(c) }

// Statement is a (subject, predicate, object, context) quad
type Statement struct {
	Subject   Entity
	Predicate Predicate
	Object    Object
	Context   Entity
}

func NewStatement(subject Entity, predicate Predicate, object Object, context Entity) Statement {
	return Statement{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Context:   context,
	}
}

// Equal reports whether both statements carry the same four values
func (s Statement) Equal(other Statement) bool {
	return s.Subject == other.Subject &&
		s.Predicate == other.Predicate &&
		s.Context == other.Context &&
		ObjectsEqual(s.Object, other.Object)
}

func (s Statement) String() string {
	return fmt.Sprintf("%s %s %s %s .", s.Subject, s.Predicate, objectString(s.Object), s.Context)
}

// Entities returns every entity referenced by the statement
func (s Statement) Entities() []Entity {
	entities := []Entity{s.Subject, s.Context}
	if e, ok := s.Object.(Entity); ok {
		entities = append(entities, e)
	}
	return entities
}

// ObjectsEqual compares objects by kind and value. Doubles compare by bit
// pattern so NaN equals itself, matching the stored representation; both
// zeros are stored as +0 and so compare equal.
func ObjectsEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := a.(DoubleLiteral); ok {
		db, ok := b.(DoubleLiteral)
		if !ok {
			return false
		}
		if da == 0 && db == 0 {
			return true
		}
		return math.Float64bits(float64(da)) == math.Float64bits(float64(db))
	}
	return a == b
}

// Rule is a (subject, predicate, object) triple kept beside the statements
// of a collection. Rules carry no context.
type Rule struct {
	Subject   Entity
	Predicate Predicate
	Object    Object
}

func NewRule(subject Entity, predicate Predicate, object Object) Rule {
	return Rule{Subject: subject, Predicate: predicate, Object: object}
}

func (r Rule) Equal(other Rule) bool {
	return r.Subject == other.Subject &&
		r.Predicate == other.Predicate &&
		ObjectsEqual(r.Object, other.Object)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s %s", r.Subject, r.Predicate, objectString(r.Object))
}

// Entities returns every entity referenced by the rule
func (r Rule) Entities() []Entity {
	entities := []Entity{r.Subject}
	if e, ok := r.Object.(Entity); ok {
		entities = append(entities, e)
	}
	return entities
}

func objectString(o Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.String()
}
