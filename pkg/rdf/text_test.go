package rdf

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseStatements(t *testing.T) {
	input := `# people
_:1 name "Alice"@en _:0 .
_:1 age 30 _:0 .

_:1 height 1.68 _:0 .
_:1 knows _:2 _:0 .
_:1 active true _:0 .
_:2 nick "B \"the\" b\n" _:9 .
`
	statements, err := ParseStatements(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(statements))
	}

	want := []Object{
		LangLiteral{Value: "Alice", LangTag: "en"},
		LongLiteral(30),
		DoubleLiteral(1.68),
		NewEntity(2),
		BooleanLiteral(true),
		StringLiteral("B \"the\" b\n"),
	}
	for i, o := range want {
		if !ObjectsEqual(statements[i].Object, o) {
			t.Errorf("statement %d: expected object %v, got %v", i, o, statements[i].Object)
		}
	}
	if statements[5].Context != NewEntity(9) {
		t.Errorf("expected context _:9, got %v", statements[5].Context)
	}
}

func TestWriteStatements_RoundTrip(t *testing.T) {
	statements := []Statement{
		NewStatement(NewEntity(1), MustPredicate("score"), DoubleLiteral(2), NewEntity(0)),
		NewStatement(NewEntity(1), MustPredicate("label"), StringLiteral("tab\there"), NewEntity(0)),
	}

	var buf bytes.Buffer
	if err := WriteStatements(&buf, statements); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := ParseStatements(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range statements {
		if !statements[i].Equal(parsed[i]) {
			t.Errorf("statement %d: expected %v, got %v", i, statements[i], parsed[i])
		}
	}
}

func TestParseStatement_Errors(t *testing.T) {
	bad := []string{
		`_:1 name "Alice" _:0`,
		`1 name "Alice" _:0 .`,
		`_:1 na(me "Alice" _:0 .`,
		`_:1 name "Alice _:0 .`,
		`_:1 name "Alice"@en- _:0 .`,
		`_:1 name 12abc _:0 .`,
		`_:1 name "Alice" _:0 . extra`,
	}
	for _, line := range bad {
		if _, err := ParseStatement(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		input    string
		expected Object
	}{
		{`_:7`, NewEntity(7)},
		{`"x y"`, StringLiteral("x y")},
		{`"hallo"@de`, LangLiteral{Value: "hallo", LangTag: "de"}},
		{`-3`, LongLiteral(-3)},
		{`2.5`, DoubleLiteral(2.5)},
		{` true `, BooleanLiteral(true)},
	}
	for _, tt := range tests {
		got, err := ParseObject(tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if !ObjectsEqual(tt.expected, got) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, got)
		}
	}

	if _, err := ParseObject(`1 2`); err == nil {
		t.Error("expected error for trailing input")
	}
}
