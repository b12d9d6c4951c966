package rdf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Statement text form: one statement per line,
//
//	_:1 name "Alice"@en _:0 .
//
// Subject and context are entities, the predicate is written bare and the
// object is an entity, a quoted string (optionally @lang), true/false, an
// integer, or a double (always carrying '.', an exponent, NaN or ±Inf).
// Blank lines and lines starting with '#' are ignored.

// WriteStatements writes statements in text form, one per line
func WriteStatements(w io.Writer, statements []Statement) error {
	bw := bufio.NewWriter(w)
	for _, s := range statements {
		if _, err := bw.WriteString(s.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseStatements reads every statement in text form from r
func ParseStatements(r io.Reader) ([]Statement, error) {
	var statements []Statement

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		s, err := ParseStatement(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		statements = append(statements, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return statements, nil
}

// ParseStatement parses a single line of text form
func ParseStatement(line string) (Statement, error) {
	p := &textParser{input: line, length: len(line)}
	return p.parseStatement()
}

// ParseObject parses a single object written in text form
func ParseObject(s string) (Object, error) {
	p := &textParser{input: s, length: len(s)}
	o, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos != p.length {
		return nil, fmt.Errorf("unexpected trailing input at position %d", p.pos)
	}
	return o, nil
}

type textParser struct {
	input  string
	pos    int
	length int
}

func (p *textParser) parseStatement() (Statement, error) {
	var s Statement

	subject, err := p.parseEntity()
	if err != nil {
		return s, fmt.Errorf("subject: %w", err)
	}

	predicate, err := p.parsePredicate()
	if err != nil {
		return s, fmt.Errorf("predicate: %w", err)
	}

	object, err := p.parseObject()
	if err != nil {
		return s, fmt.Errorf("object: %w", err)
	}

	context, err := p.parseEntity()
	if err != nil {
		return s, fmt.Errorf("context: %w", err)
	}

	p.skipWhitespace()
	if p.pos >= p.length || p.input[p.pos] != '.' {
		return s, fmt.Errorf("expected '.' at position %d", p.pos)
	}
	p.pos++
	p.skipWhitespace()
	if p.pos != p.length {
		return s, fmt.Errorf("unexpected trailing input at position %d", p.pos)
	}

	return NewStatement(subject, predicate, object, context), nil
}

func (p *textParser) skipWhitespace() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch != ' ' && ch != '\t' {
			return
		}
		p.pos++
	}
}

// token returns the next run of non-whitespace bytes
func (p *textParser) token() string {
	p.skipWhitespace()
	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *textParser) parseEntity() (Entity, error) {
	tok := p.token()
	if tok == "" {
		return Entity{}, fmt.Errorf("unexpected end of input")
	}
	return ParseEntity(tok)
}

func (p *textParser) parsePredicate() (Predicate, error) {
	tok := p.token()
	if tok == "" {
		return Predicate{}, fmt.Errorf("unexpected end of input")
	}
	return NewPredicate(tok)
}

func (p *textParser) parseObject() (Object, error) {
	p.skipWhitespace()
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if p.input[p.pos] == '"' {
		return p.parseQuoted()
	}

	tok := p.token()
	switch {
	case strings.HasPrefix(tok, "_:"):
		return ParseEntity(tok)
	case tok == "true":
		return BooleanLiteral(true), nil
	case tok == "false":
		return BooleanLiteral(false), nil
	case tok == "NaN":
		return DoubleLiteral(math.NaN()), nil
	case tok == "+Inf":
		return DoubleLiteral(math.Inf(1)), nil
	case tok == "-Inf":
		return DoubleLiteral(math.Inf(-1)), nil
	}
	return parseNumber(tok)
}

func parseNumber(tok string) (Object, error) {
	if strings.ContainsAny(tok, ".eE") {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid double %q: %w", tok, err)
		}
		return DoubleLiteral(v), nil
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid long %q: %w", tok, err)
	}
	return LongLiteral(v), nil
}

// parseQuoted reads a Go-quoted string and an optional @lang suffix
func (p *textParser) parseQuoted() (Object, error) {
	start := p.pos
	p.pos++ // skip opening '"'
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '\\' {
			p.pos += 2
			continue
		}
		if ch == '"' {
			break
		}
		p.pos++
	}
	if p.pos >= p.length {
		return nil, fmt.Errorf("unclosed string literal")
	}
	p.pos++ // skip closing '"'

	value, err := strconv.Unquote(p.input[start:p.pos])
	if err != nil {
		return nil, fmt.Errorf("invalid string literal: %w", err)
	}

	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		return NewLangLiteral(value, p.token())
	}
	return StringLiteral(value), nil
}
