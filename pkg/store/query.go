package store

import (
	"fmt"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
)

// Pattern represents a triple pattern with optional variables
type Pattern struct {
	Subject   any // rdf.Term or *Variable
	Predicate any // rdf.Term or *Variable
	Object    any // rdf.Term or *Variable
}

// Variable represents an unbound pattern position
type Variable struct {
	Name string
}

// NewVariable creates a new variable
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) String() string {
	return "?" + v.Name
}

// AllTriples returns a pattern that matches every triple
func AllTriples() *Pattern {
	return &Pattern{
		Subject:   NewVariable("s"),
		Predicate: NewVariable("p"),
		Object:    NewVariable("o"),
	}
}

// TripleIterator iterates over triples matching a pattern
type TripleIterator interface {
	Next() bool
	Triple() (*rdf.Triple, error)
	Close() error
}

// Query executes a pattern match and returns matching triples
func (s *TripleStore) Query(pattern *Pattern) (TripleIterator, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	// Select the best index based on bound positions
	table, keyPattern := s.selectIndex(pattern)

	prefix, err := s.buildScanPrefix(pattern, keyPattern)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	it, err := txn.Scan(table, prefix)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	return &tripleIterator{
		store:      s,
		txn:        txn,
		it:         it,
		keyPattern: keyPattern,
	}, nil
}

// selectIndex chooses the index whose key order starts with the bound
// positions. KeyPattern maps key position -> SPO position (S=0, P=1, O=2).
// Every combination of bound positions is a prefix of one permutation.
func (s *TripleStore) selectIndex(pattern *Pattern) (Table, []int) {
	sBound := !isVariable(pattern.Subject)
	pBound := !isVariable(pattern.Predicate)
	oBound := !isVariable(pattern.Object)

	switch {
	case sBound && pBound:
		return TableSPO, []int{0, 1, 2}
	case pBound && oBound:
		return TablePOS, []int{1, 2, 0}
	case oBound && sBound:
		return TableOSP, []int{2, 0, 1}
	case sBound:
		return TableSPO, []int{0, 1, 2}
	case pBound:
		return TablePOS, []int{1, 2, 0}
	case oBound:
		return TableOSP, []int{2, 0, 1}
	default:
		return TableSPO, []int{0, 1, 2}
	}
}

// buildScanPrefix builds a key prefix for scanning based on bound positions
func (s *TripleStore) buildScanPrefix(pattern *Pattern, keyPattern []int) ([]byte, error) {
	positions := []any{pattern.Subject, pattern.Predicate, pattern.Object}

	var prefix []byte
	for _, idx := range keyPattern {
		term := positions[idx]
		if isVariable(term) {
			// Stop at first variable
			break
		}

		rdfTerm, ok := term.(rdf.Term)
		if !ok {
			return nil, fmt.Errorf("pattern position %d is neither a term nor a variable: %T", idx, term)
		}
		encoded, _, err := s.encoder.EncodeTerm(rdfTerm)
		if err != nil {
			return nil, err
		}

		prefix = append(prefix, encoded[:]...)
	}

	return prefix, nil
}

// isVariable reports whether a pattern position is unbound
func isVariable(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(*Variable)
	return ok
}

// tripleIterator implements TripleIterator
type tripleIterator struct {
	store      *TripleStore
	txn        Transaction
	it         Iterator
	keyPattern []int
	closed     bool
}

func (ti *tripleIterator) Next() bool {
	if ti.closed {
		return false
	}
	return ti.it.Next()
}

func (ti *tripleIterator) Triple() (*rdf.Triple, error) {
	if ti.closed {
		return nil, fmt.Errorf("iterator closed")
	}

	key := ti.it.Key()
	if len(key) != len(ti.keyPattern)*EncodedTermSize {
		return nil, fmt.Errorf("invalid key length: %d", len(key))
	}

	// Map key order back to S, P, O positions
	var positions [3]EncodedTerm
	for i, idx := range ti.keyPattern {
		offset := i * EncodedTermSize
		copy(positions[idx][:], key[offset:offset+EncodedTermSize])
	}

	subject, err := ti.store.decodeTerm(ti.txn, positions[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode subject: %w", err)
	}

	predicate, err := ti.store.decodeTerm(ti.txn, positions[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode predicate: %w", err)
	}
	predicateNode, ok := predicate.(*rdf.NamedNode)
	if !ok {
		return nil, fmt.Errorf("predicate is not an IRI: %s", predicate)
	}

	object, err := ti.store.decodeTerm(ti.txn, positions[2])
	if err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}

	return rdf.NewTriple(subject, predicateNode, object), nil
}

func (ti *tripleIterator) Close() error {
	if ti.closed {
		return nil
	}
	ti.closed = true
	_ = ti.it.Close() // #nosec G104 - iterator close error less critical than transaction rollback error
	return ti.txn.Rollback()
}

// decodeTerm decodes an encoded term back to an rdf.Term
func (s *TripleStore) decodeTerm(txn Transaction, encoded EncodedTerm) (rdf.Term, error) {
	termType := rdf.TermType(encoded[0])

	// For terms that need string lookup
	var stringValue *string
	switch termType {
	case rdf.TermTypeNamedNode, rdf.TermTypeBlankNode, rdf.TermTypeStringLiteral,
		rdf.TermTypeLangStringLiteral, rdf.TermTypeTypedLiteral:
		str, err := txn.Get(TableID2Str, encoded[1:])
		if err == nil {
			strVal := string(str)
			stringValue = &strVal
		}
	}

	return s.decoder.DecodeTerm(encoded, stringValue)
}
