package store

import (
	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
)

// DefaultBatchSize is the number of triples a Loader commits per transaction
const DefaultBatchSize = 1000

// Loader is an rdf.TripleHandler that writes triples into a TripleStore,
// committing a transaction every batchSize triples and at EndRDF.
// A parse that fails midway leaves the batches committed so far in place.
type Loader struct {
	store     *TripleStore
	batchSize int
	pending   []*rdf.Triple
	inserted  int
}

// NewLoader creates a loader; a non-positive batchSize uses DefaultBatchSize
func NewLoader(store *TripleStore, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		store:     store,
		batchSize: batchSize,
		pending:   make([]*rdf.Triple, 0, batchSize),
	}
}

func (l *Loader) StartRDF() error {
	l.pending = l.pending[:0]
	return nil
}

func (l *Loader) HandleTriple(triple *rdf.Triple) error {
	l.pending = append(l.pending, triple)
	if len(l.pending) >= l.batchSize {
		return l.flush()
	}
	return nil
}

func (l *Loader) EndRDF() error {
	return l.flush()
}

// Inserted returns the number of triples committed by this loader
func (l *Loader) Inserted() int {
	return l.inserted
}

func (l *Loader) flush() error {
	if len(l.pending) == 0 {
		return nil
	}
	if err := l.store.InsertTriplesBatch(l.pending); err != nil {
		return err
	}
	l.inserted += len(l.pending)
	l.pending = l.pending[:0]
	return nil
}
