package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleksaelezovic/yars2rdf/internal/encoding"
	"github.com/aleksaelezovic/yars2rdf/internal/storage"
	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(i int) string {
	return fmt.Sprintf("(s{v:'<http://ex.org/s%d>'})\n(o{v:'value %d'})\n(s)-[<http://ex.org/p>]->(o)\n", i, i)
}

func TestConvertAll_PreservesSourceOrder(t *testing.T) {
	var sources []Source
	for i := 0; i < 20; i++ {
		sources = append(sources, ReaderSource(fmt.Sprintf("doc%d", i), strings.NewReader(doc(i))))
	}

	results, err := NewConverter(4, nil).ConvertAll(context.Background(), sources, "http://ex.org/")
	require.NoError(t, err)
	require.Len(t, results, 20)

	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("doc%d", i), res.Source)
		assert.Equal(t, 1, res.Triples)
		want := fmt.Sprintf("<http://ex.org/s%d> <http://ex.org/p> \"value %d\" .\n", i, i)
		assert.Equal(t, want, string(res.NTriples))
	}
}

func TestConvertAll_SeparateNodeTables(t *testing.T) {
	// The second document relies on a node only defined in the first
	sources := []Source{
		ReaderSource("a", strings.NewReader("(x{v:'<http://ex.org/x>'})\n")),
		ReaderSource("b", strings.NewReader("(x)-[<http://ex.org/p>]->(x)\n")),
	}

	_, err := NewConverter(1, nil).ConvertAll(context.Background(), sources, "http://ex.org/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, rdf.ErrUnresolvedReference))
	assert.Contains(t, err.Error(), "b:")
}

func TestConvertAll_FileSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.yars")
	require.NoError(t, os.WriteFile(path, []byte(doc(7)), 0o600))

	results, err := NewConverter(2, nil).ConvertAll(context.Background(),
		[]Source{FileSource(path)}, "http://ex.org/")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, path, results[0].Source)

	_, err = NewConverter(2, nil).ConvertAll(context.Background(),
		[]Source{FileSource(filepath.Join(dir, "missing.yars"))}, "http://ex.org/")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConvertAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter(2, nil).ConvertAll(ctx,
		[]Source{ReaderSource("a", strings.NewReader(doc(1)))}, "http://ex.org/")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConvertAll_Empty(t *testing.T) {
	results, err := NewConverter(0, nil).ConvertAll(context.Background(), nil, "http://ex.org/")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoadAll(t *testing.T) {
	s, err := storage.NewBadgerStorage("", storage.InMemory())
	require.NoError(t, err)
	defer s.Close()
	ts := store.NewTripleStore(s, encoding.NewTermEncoder(), encoding.NewTermDecoder())

	sources := []Source{
		ReaderSource("one", strings.NewReader(doc(1))),
		ReaderSource("two", strings.NewReader(doc(2))),
		ReaderSource("bad", strings.NewReader("(s)-[<http://ex.org/p>]->(o)\n")),
		ReaderSource("never", strings.NewReader(doc(3))),
	}

	n, err := LoadAll(context.Background(), ts, sources, "http://ex.org/", 10, nil)
	require.Error(t, err)
	assert.Equal(t, 2, n)

	var perr *rdf.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Line)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
