package encoding

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"github.com/zeebo/xxh3"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8)
	MaxInlineStringSize = 16

	// separates the datatype IRI from the lexical value in id2str
	typedLiteralSep = "\x00"
)

// TermEncoder encodes RDF terms into store.EncodedTerm values. IRIs, blank
// nodes and long or tagged literals are identified by a 128-bit xxh3 hash;
// short plain literals are stored inline.
type TermEncoder struct{}

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

// EncodeTerm encodes an RDF term into a fixed-size byte array
// Returns the encoded term and optionally a string to store in id2str table
func (e *TermEncoder) EncodeTerm(term rdf.Term) (store.EncodedTerm, *string, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.hashed(rdf.TermTypeNamedNode, t.IRI)
	case *rdf.BlankNode:
		return e.hashed(rdf.TermTypeBlankNode, t.ID)
	case *rdf.Literal:
		return e.encodeLiteral(t)
	default:
		return store.EncodedTerm{}, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func (e *TermEncoder) hashed(termType rdf.TermType, s string) (store.EncodedTerm, *string, error) {
	var encoded store.EncodedTerm
	encoded[0] = byte(termType)
	hash := e.Hash128(s)
	copy(encoded[1:], hash[:])
	return encoded, &s, nil
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (store.EncodedTerm, *string, error) {
	// Language-tagged string
	if lit.Language != "" {
		return e.hashed(rdf.TermTypeLangStringLiteral, lit.Value+"@"+lit.Language)
	}

	// Typed literal other than xsd:string
	if lit.Datatype != nil && lit.Datatype.IRI != rdf.XSDString.IRI {
		if strings.Contains(lit.Datatype.IRI, typedLiteralSep) {
			return store.EncodedTerm{}, nil, fmt.Errorf("datatype IRI contains NUL: %q", lit.Datatype.IRI)
		}
		return e.hashed(rdf.TermTypeTypedLiteral, lit.Datatype.IRI+typedLiteralSep+lit.Value)
	}

	// Inline small strings; NUL bytes would be mistaken for padding
	if len(lit.Value) <= MaxInlineStringSize && !strings.Contains(lit.Value, "\x00") {
		var encoded store.EncodedTerm
		encoded[0] = byte(rdf.TermTypeStringLiteral)
		copy(encoded[1:], lit.Value)
		return encoded, nil, nil
	}

	return e.hashed(rdf.TermTypeStringLiteral, lit.Value)
}

// EncodeKey concatenates encoded terms into an index key.
// Big-endian layout keeps keys lexicographically sortable.
func (e *TermEncoder) EncodeKey(terms ...store.EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*store.EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// GetTermType extracts the type from an encoded term
func GetTermType(encoded store.EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}
