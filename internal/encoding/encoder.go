package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/zeebo/xxh3"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8)
	MaxInlineStringSize = 16

	// Encoded term size (type byte + 16 bytes for 128-bit hash or inline data)
	EncodedTermSize = store.EncodedTermSize

	// hashedFlag marks a string literal stored by hash rather than inline
	hashedFlag byte = 0x80
)

// EncodedTerm represents a term encoded as a type byte followed by up to 16 bytes of data
type EncodedTerm = store.EncodedTerm

// TermEncoder handles encoding of terms
type TermEncoder struct{}

var _ store.TermEncoder = (*TermEncoder)(nil)

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes a term into a fixed-size byte array.
// Returns the encoded term and optionally a string to store in id2str table
func (e *TermEncoder) EncodeTerm(term store.Term) (EncodedTerm, *string, error) {
	var encoded EncodedTerm

	switch t := term.(type) {
	case rdf.Entity:
		return e.encodeEntity(t), nil, nil
	case rdf.Predicate:
		return e.encodeHashed(rdf.TermTypePredicate, t.Name)
	case rdf.StringLiteral:
		return e.encodeStringLiteral(string(t))
	case rdf.LangLiteral:
		// the decoder splits value and tag at the last '@'
		if err := rdf.ValidateObject(t); err != nil {
			return encoded, nil, err
		}
		return e.encodeHashed(rdf.TermTypeLangStringLiteral, t.Value+"@"+t.LangTag)
	case rdf.BooleanLiteral:
		encoded[0] = byte(rdf.TermTypeBooleanLiteral)
		if t {
			encoded[1] = 1
		}
		return encoded, nil, nil
	case rdf.LongLiteral:
		return EncodeLong(int64(t)), nil, nil
	case rdf.DoubleLiteral:
		return EncodeDouble(float64(t)), nil, nil
	default:
		return encoded, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func (e *TermEncoder) encodeEntity(entity rdf.Entity) EncodedTerm {
	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeEntity)
	binary.BigEndian.PutUint64(encoded[1:9], entity.ID)
	return encoded
}

func (e *TermEncoder) encodeStringLiteral(value string) (EncodedTerm, *string, error) {
	var encoded EncodedTerm

	// Inline small strings; a NUL byte would be indistinguishable from padding
	if len(value) <= MaxInlineStringSize && !bytes.ContainsRune([]byte(value), 0) {
		encoded[0] = byte(rdf.TermTypeStringLiteral)
		copy(encoded[1:], value)
		return encoded, nil, nil
	}

	return e.encodeHashed(rdf.TermTypeStringLiteral, value)
}

func (e *TermEncoder) encodeHashed(termType rdf.TermType, value string) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	encoded[0] = byte(termType)
	if termType == rdf.TermTypeStringLiteral {
		encoded[0] |= hashedFlag
	}

	hash := e.Hash128(value)
	copy(encoded[1:], hash[:])

	return encoded, &value, nil
}

// EncodeCollection maps a collection name to its 16-byte key prefix
func (e *TermEncoder) EncodeCollection(name rdf.CollectionName) store.CollectionKey {
	return store.CollectionKey(e.Hash128(string(name)))
}

// EncodeQuadKey encodes a statement key for one of the indexes.
// Returns a big-endian byte array for lexicographic sorting
func (e *TermEncoder) EncodeQuadKey(collection store.CollectionKey, terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(collection)+len(terms)*EncodedTermSize)
	result = append(result, collection[:]...)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// EncodeLong stores v big endian with the sign bit flipped so byte order
// matches numeric order
func EncodeLong(v int64) EncodedTerm {
	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeLongLiteral)
	binary.BigEndian.PutUint64(encoded[1:9], uint64(v)^(1<<63)) // #nosec G115 - intentional bit-pattern conversion for binary encoding
	return encoded
}

// EncodeDouble stores v so that byte order matches numeric order for
// every non-NaN value. -0 is stored as +0.
func EncodeDouble(v float64) EncodedTerm {
	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeDoubleLiteral)
	if v == 0 {
		v = 0
	}
	bits := math.Float64bits(v)
	if bits&(1<<63) == 0 {
		bits ^= 1 << 63
	} else {
		bits = ^bits
	}
	binary.BigEndian.PutUint64(encoded[1:9], bits)
	return encoded
}

// GetTermType extracts the type from an encoded term
func GetTermType(encoded EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0] &^ hashedFlag)
}

// NeedsLookup reports whether decoding requires the id2str table
func NeedsLookup(encoded EncodedTerm) bool {
	switch {
	case encoded[0]&hashedFlag != 0:
		return true
	case GetTermType(encoded) == rdf.TermTypePredicate,
		GetTermType(encoded) == rdf.TermTypeLangStringLiteral:
		return true
	default:
		return false
	}
}

// StringKey is the id2str key of a hashed term
func StringKey(encoded EncodedTerm) []byte {
	return encoded[1:]
}
