package store_test

import (
	"errors"
	"testing"

	"github.com/aleksaelezovic/yars2rdf/internal/encoding"
	"github.com/aleksaelezovic/yars2rdf/internal/storage"
	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *store.TripleStore {
	t.Helper()
	s, err := storage.NewBadgerStorage("", storage.InMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return store.NewTripleStore(s, encoding.NewTermEncoder(), encoding.NewTermDecoder())
}

const socialGraph = `(alice{v:'<http://ex.org/alice>'})
(bob{v:'<http://ex.org/bob>'})
(aliceName{v:'Alice'})
(bobName{v:'Bob'})
(alice)-[<http://xmlns.com/foaf/0.1/knows>]->(bob)
(alice)-[<http://xmlns.com/foaf/0.1/name>]->(aliceName)
(bob)-[<http://xmlns.com/foaf/0.1/name>]->(bobName)
`

func TestLoader_LoadsParsedTriples(t *testing.T) {
	ts := newMemoryStore(t)

	for _, batch := range []int{0, 1, 2, 100} {
		loader := store.NewLoader(ts, batch)
		p := rdf.NewYARSParser(rdf.WithYARSHandler(loader))
		require.NoError(t, p.ParseString(socialGraph, "http://ex.org/"))
		assert.Equal(t, 3, loader.Inserted())
	}

	// Reloading the same document does not duplicate triples
	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	ok, err := ts.ContainsTriple(rdf.NewTriple(
		rdf.NewNamedNode("http://ex.org/bob"),
		rdf.NewNamedNode("http://xmlns.com/foaf/0.1/name"),
		rdf.NewLiteral("Bob"),
	))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoader_PartialLoadOnFailure(t *testing.T) {
	ts := newMemoryStore(t)
	loader := store.NewLoader(ts, 1)
	p := rdf.NewYARSParser(rdf.WithYARSHandler(loader))

	input := socialGraph + "(alice)-[<http://ex.org/p>]->(nobody)\n"
	err := p.ParseString(input, "http://ex.org/")
	require.True(t, errors.Is(err, rdf.ErrUnresolvedReference))

	// Batches committed before the failure stay committed
	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestQuery_RoundTripsParsedTriples(t *testing.T) {
	ts := newMemoryStore(t)
	collector := rdf.NewTripleCollector()
	p := rdf.NewYARSParser(rdf.WithYARSHandler(collector))
	require.NoError(t, p.ParseString(socialGraph, "http://ex.org/"))
	require.NoError(t, ts.InsertTriplesBatch(collector.Triples))

	iter, err := ts.Query(&store.Pattern{
		Subject:   rdf.NewNamedNode("http://ex.org/alice"),
		Predicate: store.NewVariable("p"),
		Object:    store.NewVariable("o"),
	})
	require.NoError(t, err)
	defer iter.Close()

	var got []*rdf.Triple
	for iter.Next() {
		triple, err := iter.Triple()
		require.NoError(t, err)
		got = append(got, triple)
	}
	require.Len(t, got, 2)
	for _, triple := range got {
		found := false
		for _, want := range collector.Triples {
			found = found || want.Equals(triple)
		}
		assert.True(t, found, "unexpected triple %s", triple)
	}
}

func TestQuery_RejectsNonTerms(t *testing.T) {
	ts := newMemoryStore(t)
	_, err := ts.Query(&store.Pattern{Subject: "not a term"})
	assert.Error(t, err)
}

func TestTableString(t *testing.T) {
	assert.Equal(t, "spo", store.TableSPO.String())
	assert.Equal(t, "id2str", store.TableID2Str.String())
	assert.Equal(t, "unknown", store.TableCount.String())
}
