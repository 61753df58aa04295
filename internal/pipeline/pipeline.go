// Package pipeline runs YARS documents through the parser into N-Triples
// output or a triple store.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
	"github.com/aleksaelezovic/yars2rdf/pkg/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is a named YARS document
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads a file, or standard input when path is "-"
func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			if path == "-" {
				return io.NopCloser(os.Stdin), nil
			}
			return os.Open(path) // #nosec G304 - paths come from the command line
		},
	}
}

// ReaderSource wraps an already open reader
func ReaderSource(name string, r io.Reader) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Result is the outcome of converting one source
type Result struct {
	Source   string
	NTriples []byte
	Triples  int
}

// Converter converts sources concurrently. Every source gets its own parser
// and node table.
type Converter struct {
	workers int
	logger  *zap.Logger
}

func NewConverter(workers int, logger *zap.Logger) *Converter {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{workers: workers, logger: logger}
}

// ConvertAll converts every source to N-Triples. Results are returned in the
// order of sources. The first failure cancels the conversions still running
// and is returned.
func (c *Converter) ConvertAll(ctx context.Context, sources []Source, baseIRI string) ([]Result, error) {
	results := make([]Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res, err := c.convert(gctx, src, baseIRI)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Converter) convert(ctx context.Context, src Source, baseIRI string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	writer := rdf.NewNTriplesWriter(&buf)
	err := parseSource(ctx, src, baseIRI, writer, c.logger)
	if err != nil {
		return Result{}, err
	}

	c.logger.Info("converted document",
		zap.String("source", src.Name),
		zap.Int("triples", writer.Count()),
	)
	return Result{Source: src.Name, NTriples: buf.Bytes(), Triples: writer.Count()}, nil
}

// LoadAll parses each source in turn into the store and returns the number
// of triples inserted. Loading stops at the first failing source.
func LoadAll(ctx context.Context, ts *store.TripleStore, sources []Source, baseIRI string, batchSize int, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	total := 0
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		loader := store.NewLoader(ts, batchSize)
		err := parseSource(ctx, src, baseIRI, loader, logger)
		total += loader.Inserted()
		if err != nil {
			return total, err
		}

		logger.Info("loaded document",
			zap.String("source", src.Name),
			zap.Int("triples", loader.Inserted()),
		)
	}
	return total, nil
}

func parseSource(ctx context.Context, src Source, baseIRI string, handler rdf.TripleHandler, logger *zap.Logger) error {
	rc, err := src.Open()
	if err != nil {
		return fmt.Errorf("%s: %w", src.Name, err)
	}
	defer rc.Close()

	parser := rdf.NewYARSParser(
		rdf.WithYARSHandler(handler),
		rdf.WithYARSLogger(logger.With(zap.String("source", src.Name))),
	)
	if err := parser.Parse(&contextReader{ctx: ctx, r: rc}, baseIRI); err != nil {
		return fmt.Errorf("%s: %w", src.Name, err)
	}
	return nil
}

// contextReader fails reads once ctx is done, so a cancelled conversion stops
// at the next read instead of running to the end of the input.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
