package rdf

import (
	"math"
	"testing"
)

func TestLongLiteralRange_Boundaries(t *testing.T) {
	r := LongLiteralRange{From: 10, To: 20}
	tests := map[int64]bool{9: false, 10: true, 19: true, 20: false}
	for v, want := range tests {
		if got := r.Contains(LongLiteral(v)); got != want {
			t.Errorf("Contains(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestRange_KindMismatch(t *testing.T) {
	r := LongLiteralRange{From: 0, To: 100}
	for _, o := range []Object{DoubleLiteral(5), StringLiteral("5"), NewEntity(5), BooleanLiteral(true)} {
		if r.Contains(o) {
			t.Errorf("expected %v (%v) not to match a long range", o, o.Type())
		}
	}
}

func TestDoubleLiteralRange(t *testing.T) {
	r := DoubleLiteralRange{From: -1.5, To: 2.5}
	if !r.Contains(DoubleLiteral(-1.5)) {
		t.Error("lower bound should be inclusive")
	}
	if r.Contains(DoubleLiteral(2.5)) {
		t.Error("upper bound should be exclusive")
	}
	if r.Contains(DoubleLiteral(math.NaN())) {
		t.Error("NaN should never match")
	}
}

func TestStringLiteralRange(t *testing.T) {
	r := StringLiteralRange{From: "b", To: "d"}
	if !r.Contains(StringLiteral("b")) || !r.Contains(StringLiteral("cz")) {
		t.Error("expected b and cz in range")
	}
	if r.Contains(StringLiteral("d")) || r.Contains(StringLiteral("a")) {
		t.Error("expected a and d outside range")
	}
	if r.Contains(LangLiteral{Value: "c", LangTag: "en"}) {
		t.Error("lang literal should not match a string range")
	}
}

func TestLangLiteralRange(t *testing.T) {
	r := LangLiteralRange{
		From: LangLiteral{Value: "a", LangTag: "en"},
		To:   LangLiteral{Value: "m", LangTag: "en"},
	}
	if !r.Contains(LangLiteral{Value: "hello", LangTag: "en"}) {
		t.Error("expected hello@en in range")
	}
	if r.Contains(LangLiteral{Value: "hello", LangTag: "fr"}) {
		t.Error("different tag should not match")
	}

	mixed := LangLiteralRange{
		From: LangLiteral{Value: "a", LangTag: "en"},
		To:   LangLiteral{Value: "m", LangTag: "fr"},
	}
	if mixed.Contains(LangLiteral{Value: "b", LangTag: "en"}) {
		t.Error("bounds with different tags match nothing")
	}
}
