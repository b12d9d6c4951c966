package rdf

import "fmt"

// Range is a half-open interval [From, To) over one literal kind.
// Objects of any other kind never fall inside a Range.
type Range interface {
	// Kind is the literal type the range applies to
	Kind() TermType
	// Contains reports whether o is of the range's kind and within bounds
	Contains(o Object) bool
	String() string
}

// LangLiteralRange matches language-tagged literals whose tag equals the
// tag of both bounds and whose value lies in [From.Value, To.Value).
type LangLiteralRange struct {
	From LangLiteral
	To   LangLiteral
}

func (r LangLiteralRange) Kind() TermType { return TermTypeLangStringLiteral }

func (r LangLiteralRange) Contains(o Object) bool {
	l, ok := o.(LangLiteral)
	if !ok || r.From.LangTag != r.To.LangTag || l.LangTag != r.From.LangTag {
		return false
	}
	return l.Value >= r.From.Value && l.Value < r.To.Value
}

func (r LangLiteralRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.From, r.To)
}

// StringLiteralRange matches plain strings in [From, To)
type StringLiteralRange struct {
	From string
	To   string
}

func (r StringLiteralRange) Kind() TermType { return TermTypeStringLiteral }

func (r StringLiteralRange) Contains(o Object) bool {
	s, ok := o.(StringLiteral)
	return ok && string(s) >= r.From && string(s) < r.To
}

func (r StringLiteralRange) String() string {
	return fmt.Sprintf("[%q, %q)", r.From, r.To)
}

// LongLiteralRange matches integers in [From, To)
type LongLiteralRange struct {
	From int64
	To   int64
}

func (r LongLiteralRange) Kind() TermType { return TermTypeLongLiteral }

func (r LongLiteralRange) Contains(o Object) bool {
	l, ok := o.(LongLiteral)
	return ok && int64(l) >= r.From && int64(l) < r.To
}

func (r LongLiteralRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.From, r.To)
}

// DoubleLiteralRange matches doubles in [From, To). NaN is never contained.
type DoubleLiteralRange struct {
	From float64
	To   float64
}

func (r DoubleLiteralRange) Kind() TermType { return TermTypeDoubleLiteral }

func (r DoubleLiteralRange) Contains(o Object) bool {
	d, ok := o.(DoubleLiteral)
	return ok && float64(d) >= r.From && float64(d) < r.To
}

func (r DoubleLiteralRange) String() string {
	return fmt.Sprintf("[%g, %g)", r.From, r.To)
}
