package store

import (
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// EncodedTermSize is a type byte followed by 16 bytes of data
const EncodedTermSize = 17

// EncodedTerm represents a term encoded as a type byte followed by up to 16 bytes of data
type EncodedTerm [EncodedTermSize]byte

// CollectionKey is the fixed-width key prefix shared by a collection's statements
type CollectionKey [16]byte

// TermEncoder handles encoding of terms into a compact binary format
type TermEncoder interface {
	// EncodeTerm encodes an object or predicate into a fixed-size byte array.
	// Returns the encoded term and optionally a string to store in id2str table
	EncodeTerm(term Term) (EncodedTerm, *string, error)

	// EncodeCollection maps a collection name to its key prefix
	EncodeCollection(name rdf.CollectionName) CollectionKey

	// EncodeQuadKey encodes a statement key for one of the indexes.
	// Returns a big-endian byte array for lexicographic sorting
	EncodeQuadKey(collection CollectionKey, terms ...EncodedTerm) []byte
}

// TermDecoder handles decoding of terms from binary format
type TermDecoder interface {
	// DecodeTerm decodes an encoded term.
	// For terms that require string lookup, stringValue should be provided
	DecodeTerm(encoded EncodedTerm, stringValue *string) (Term, error)
}

// Term is anything that occupies a statement position
type Term interface {
	Type() rdf.TermType
	String() string
}
