package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

// TermDecoder handles decoding of terms
type TermDecoder struct{}

var _ store.TermDecoder = (*TermDecoder)(nil)

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm decodes an encoded term.
// For terms that require string lookup, stringValue should be provided
func (d *TermDecoder) DecodeTerm(encoded EncodedTerm, stringValue *string) (store.Term, error) {
	if NeedsLookup(encoded) && stringValue == nil {
		return nil, fmt.Errorf("string value required for %s term", GetTermType(encoded))
	}

	switch GetTermType(encoded) {
	case rdf.TermTypeEntity:
		return rdf.NewEntity(binary.BigEndian.Uint64(encoded[1:9])), nil

	case rdf.TermTypePredicate:
		return rdf.Predicate{Name: *stringValue}, nil

	case rdf.TermTypeStringLiteral:
		if stringValue != nil {
			return rdf.StringLiteral(*stringValue), nil
		}
		// Inline string, zero padded
		endIdx := 1
		for endIdx < EncodedTermSize && encoded[endIdx] != 0 {
			endIdx++
		}
		return rdf.StringLiteral(encoded[1:endIdx]), nil

	case rdf.TermTypeLangStringLiteral:
		// Split value@language; tags never contain '@'
		i := strings.LastIndexByte(*stringValue, '@')
		if i < 0 {
			return nil, fmt.Errorf("malformed language-tagged literal %q", *stringValue)
		}
		return rdf.LangLiteral{Value: (*stringValue)[:i], LangTag: (*stringValue)[i+1:]}, nil

	case rdf.TermTypeBooleanLiteral:
		return rdf.BooleanLiteral(encoded[1] != 0), nil

	case rdf.TermTypeLongLiteral:
		bits := binary.BigEndian.Uint64(encoded[1:9]) ^ (1 << 63)
		return rdf.LongLiteral(int64(bits)), nil // #nosec G115 - intentional bit-pattern conversion for binary decoding

	case rdf.TermTypeDoubleLiteral:
		bits := binary.BigEndian.Uint64(encoded[1:9])
		if bits&(1<<63) != 0 {
			bits ^= 1 << 63
		} else {
			bits = ^bits
		}
		return rdf.DoubleLiteral(math.Float64frombits(bits)), nil

	default:
		return nil, fmt.Errorf("unknown term type: %d", encoded[0])
	}
}
