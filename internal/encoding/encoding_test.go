package encoding

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	enc := NewTermEncoder()
	dec := NewTermDecoder()

	terms := []rdf.Term{
		rdf.NewNamedNode("http://example.org/alice"),
		rdf.NewBlankNode("b1"),
		rdf.NewLiteral(""),
		rdf.NewLiteral("short"),
		rdf.NewLiteral("exactly sixteen!"),
		rdf.NewLiteral(strings.Repeat("long literal ", 4)),
		rdf.NewLiteral("nul\x00inside"),
		rdf.NewLiteralWithLanguage("bonjour", "fr"),
		rdf.NewLiteralWithDatatype("42", rdf.NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")),
	}

	for _, term := range terms {
		t.Run(term.String(), func(t *testing.T) {
			encoded, str, err := enc.EncodeTerm(term)
			require.NoError(t, err)

			decoded, err := dec.DecodeTerm(encoded, str)
			require.NoError(t, err)
			assert.True(t, term.Equals(decoded), "expected %s, got %s", term, decoded)
		})
	}
}

func TestEncodeTerm_InlineStrings(t *testing.T) {
	enc := NewTermEncoder()

	encoded, str, err := enc.EncodeTerm(rdf.NewLiteral("hi"))
	require.NoError(t, err)
	assert.Nil(t, str, "short literals should not need id2str")
	assert.Equal(t, rdf.TermTypeStringLiteral, GetTermType(encoded))
	assert.Equal(t, byte('h'), encoded[1])

	_, str, err = enc.EncodeTerm(rdf.NewLiteral("seventeen bytes!!"))
	require.NoError(t, err)
	require.NotNil(t, str)
}

func TestEncodeTerm_XSDStringIsPlain(t *testing.T) {
	enc := NewTermEncoder()
	a, _, err := enc.EncodeTerm(rdf.NewLiteral("x"))
	require.NoError(t, err)
	b, _, err := enc.EncodeTerm(rdf.NewLiteralWithDatatype("x", rdf.XSDString))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeTerm_DistinctTypes(t *testing.T) {
	enc := NewTermEncoder()
	iri, _, err := enc.EncodeTerm(rdf.NewNamedNode("http://example.org/x"))
	require.NoError(t, err)
	lit, _, err := enc.EncodeTerm(rdf.NewLiteral("http://example.org/x"))
	require.NoError(t, err)
	assert.NotEqual(t, iri, lit)
}

func TestEncodeKey(t *testing.T) {
	enc := NewTermEncoder()
	a, _, _ := enc.EncodeTerm(rdf.NewNamedNode("http://a"))
	b, _, _ := enc.EncodeTerm(rdf.NewNamedNode("http://b"))

	key := enc.EncodeKey(a, b)
	require.Len(t, key, 2*store.EncodedTermSize)
	assert.Equal(t, a[:], key[:store.EncodedTermSize])
	assert.Equal(t, b[:], key[store.EncodedTermSize:])
}

func TestDecodeTerm_Errors(t *testing.T) {
	dec := NewTermDecoder()

	var encoded store.EncodedTerm
	encoded[0] = byte(rdf.TermTypeNamedNode)
	_, err := dec.DecodeTerm(encoded, nil)
	assert.Error(t, err)

	encoded[0] = 0xFF
	_, err = dec.DecodeTerm(encoded, nil)
	assert.Error(t, err)
}
