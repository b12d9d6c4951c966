package rdf

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalid is matched by every ValidationError
var ErrInvalid = errors.New("invalid value")

var (
	predicatePattern = regexp.MustCompile("^[a-zA-Z_][^\\s()\\[\\]{}'\"`<>\\\\]*$")
	langTagPattern   = regexp.MustCompile(`^[a-zA-Z]+(-[a-zA-Z0-9]+)*$`)
)

// ValidationError reports a malformed identifier at construction time.
type ValidationError struct {
	Kind  string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// ValidPredicate reports whether s is a well-formed predicate identifier
func ValidPredicate(s string) bool {
	return predicatePattern.MatchString(s)
}

// ValidLangTag reports whether s is a well-formed language tag
func ValidLangTag(s string) bool {
	return langTagPattern.MatchString(s)
}

// Validate checks the fields that struct literals can bypass the
// constructors for: the predicate name and a language tag in the object.
func (s Statement) Validate() error {
	return validateTerms(s.Predicate, s.Object)
}

// Validate is Statement.Validate for rules
func (r Rule) Validate() error {
	return validateTerms(r.Predicate, r.Object)
}

func validateTerms(predicate Predicate, object Object) error {
	if !ValidPredicate(predicate.Name) {
		return &ValidationError{Kind: "predicate", Value: predicate.Name}
	}
	return ValidateObject(object)
}

// ValidateObject rejects language literals with a malformed tag. Other
// objects are always valid.
func ValidateObject(object Object) error {
	if l, ok := object.(LangLiteral); ok && !ValidLangTag(l.LangTag) {
		return &ValidationError{Kind: "lang tag", Value: l.LangTag}
	}
	return nil
}
