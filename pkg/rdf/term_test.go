package rdf

import (
	"errors"
	"math"
	"testing"
)

// ===== Entity Tests =====

func TestEntity_String(t *testing.T) {
	e := NewEntity(42)
	if e.String() != "_:42" {
		t.Errorf("Expected _:42, got %s", e.String())
	}
}

func TestParseEntity(t *testing.T) {
	e, err := ParseEntity("_:1344")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != 1344 {
		t.Errorf("Expected 1344, got %d", e.ID)
	}

	for _, bad := range []string{"", "_:", "1", "_:abc", "_:-1", "x:1"} {
		if _, err := ParseEntity(bad); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseEntity(%q): expected ErrInvalid, got %v", bad, err)
		}
	}
}

func TestEntity_Equality(t *testing.T) {
	if NewEntity(1) != NewEntity(1) {
		t.Error("Expected entities with same id to be equal")
	}
	if NewEntity(1) == NewEntity(2) {
		t.Error("Expected entities with different ids to differ")
	}
}

// ===== Literal Tests =====

func TestLiteral_Types(t *testing.T) {
	tests := []struct {
		obj  Object
		want TermType
	}{
		{NewEntity(1), TermTypeEntity},
		{StringLiteral("x"), TermTypeStringLiteral},
		{LangLiteral{Value: "x", LangTag: "en"}, TermTypeLangStringLiteral},
		{BooleanLiteral(true), TermTypeBooleanLiteral},
		{LongLiteral(1), TermTypeLongLiteral},
		{DoubleLiteral(1.5), TermTypeDoubleLiteral},
	}
	for _, tt := range tests {
		if tt.obj.Type() != tt.want {
			t.Errorf("%v: expected %v, got %v", tt.obj, tt.want, tt.obj.Type())
		}
	}
}

func TestDoubleLiteral_String(t *testing.T) {
	tests := map[float64]string{
		1:            "1.0",
		1.5:          "1.5",
		-2:           "-2.0",
		1e21:         "1e+21",
		math.Inf(1):  "+Inf",
		math.Inf(-1): "-Inf",
	}
	for v, want := range tests {
		if got := DoubleLiteral(v).String(); got != want {
			t.Errorf("DoubleLiteral(%g): expected %s, got %s", v, want, got)
		}
	}
	if DoubleLiteral(math.NaN()).String() != "NaN" {
		t.Error("Expected NaN")
	}
}

func TestNewLangLiteral(t *testing.T) {
	if _, err := NewLangLiteral("hello", "en-GB"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	_, err := NewLangLiteral("hello", "en-")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Kind != "lang tag" {
		t.Errorf("Expected kind 'lang tag', got %q", verr.Kind)
	}
}

// ===== Statement Tests =====

func TestStatement_Equal(t *testing.T) {
	name := MustPredicate("name")
	s1 := NewStatement(NewEntity(1), name, StringLiteral("Alice"), NewEntity(0))
	s2 := NewStatement(NewEntity(1), name, StringLiteral("Alice"), NewEntity(0))
	s3 := NewStatement(NewEntity(1), name, StringLiteral("Bob"), NewEntity(0))

	if !s1.Equal(s2) {
		t.Error("Expected equal statements to be equal")
	}
	if s1.Equal(s3) {
		t.Error("Expected different statements to differ")
	}

	nan := NewStatement(NewEntity(1), name, DoubleLiteral(math.NaN()), NewEntity(0))
	if !nan.Equal(nan) {
		t.Error("Expected NaN statement to equal itself")
	}

	zero := NewStatement(NewEntity(1), name, DoubleLiteral(0), NewEntity(0))
	negZero := NewStatement(NewEntity(1), name, DoubleLiteral(math.Copysign(0, -1)), NewEntity(0))
	if !zero.Equal(negZero) {
		t.Error("Expected -0.0 and 0.0 statements to be equal")
	}
}

func TestRule_Equal(t *testing.T) {
	knows := MustPredicate("knows")
	r := NewRule(NewEntity(1), knows, NewEntity(2))
	if !r.Equal(NewRule(NewEntity(1), knows, NewEntity(2))) {
		t.Error("Expected equal rules to be equal")
	}
	if r.Equal(NewRule(NewEntity(1), knows, NewEntity(3))) {
		t.Error("Expected different rules to differ")
	}
	if got := r.String(); got != "_:1 knows _:2" {
		t.Errorf("Unexpected rule string %q", got)
	}
}

func TestStatement_Entities(t *testing.T) {
	s := NewStatement(NewEntity(1), MustPredicate("knows"), NewEntity(2), NewEntity(3))
	if got := len(s.Entities()); got != 3 {
		t.Errorf("Expected 3 entities, got %d", got)
	}
	s.Object = LongLiteral(7)
	if got := len(s.Entities()); got != 2 {
		t.Errorf("Expected 2 entities, got %d", got)
	}
}

func TestNewCollectionName(t *testing.T) {
	if _, err := NewCollectionName(""); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	c, err := NewCollectionName("people")
	if err != nil || c != "people" {
		t.Errorf("unexpected result %q, %v", c, err)
	}
}
