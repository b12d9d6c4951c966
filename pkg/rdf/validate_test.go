package rdf

import (
	"errors"
	"testing"
)

func TestValidPredicate(t *testing.T) {
	tests := map[string]bool{
		"":                           false,
		"http://localhost/people/7":  true,
		"http://localhost(/people/7": false,
		"http://localhost /people/7": false,
		"hello":                      true,
		"_:":                         true,
		"_:valid":                    true,
		"_:1":                        true,
		"_:1344":                     true,
		"1abc":                       false,
		"a<b":                        false,
		"a`b":                        false,
		`a\b`:                        false,
	}
	for input, want := range tests {
		if got := ValidPredicate(input); got != want {
			t.Errorf("ValidPredicate(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestValidLangTag(t *testing.T) {
	tests := map[string]bool{
		"":         false,
		"en":       true,
		"en-":      false,
		"en-fr":    true,
		"en-fr-":   false,
		"en-fr-sp": true,
		"ennnenefnk-dkfjkjfl-dfakjelfkjalkf-fakjeflkajlkfj": true,
		"en-fr-ef ": false,
		"en-419":    true,
		"1en":       false,
	}
	for input, want := range tests {
		if got := ValidLangTag(input); got != want {
			t.Errorf("ValidLangTag(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewPredicate_Invalid(t *testing.T) {
	_, err := NewPredicate("has space")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if err.Error() != `invalid predicate: "has space"` {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestStatement_Validate(t *testing.T) {
	e := NewEntity(1)
	valid := NewStatement(e, MustPredicate("name"), LangLiteral{Value: "x", LangTag: "en"}, e)
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]Statement{
		"lang tag with @":   NewStatement(e, MustPredicate("name"), LangLiteral{Value: "x", LangTag: "a@b"}, e),
		"empty lang tag":    NewStatement(e, MustPredicate("name"), LangLiteral{Value: "x"}, e),
		"predicate literal": NewStatement(e, Predicate{Name: "has space"}, StringLiteral("x"), e),
		"zero predicate":    NewStatement(e, Predicate{}, StringLiteral("x"), e),
	}
	for name, s := range tests {
		if err := s.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestRule_Validate(t *testing.T) {
	e := NewEntity(1)
	if err := NewRule(e, MustPredicate("knows"), e).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := NewRule(e, MustPredicate("name"), LangLiteral{Value: "x", LangTag: "en@fr"}).Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
