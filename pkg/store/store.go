package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/aleksaelezovic/yars2rdf/pkg/rdf"
)

// TripleStore keeps RDF triples in three index permutations (SPO, POS, OSP)
// on top of a key-value Storage.
type TripleStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder
}

// NewTripleStore creates a new triplestore
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *TripleStore {
	return &TripleStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
	}
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// Sync flushes committed writes to durable storage
func (s *TripleStore) Sync() error {
	return s.storage.Sync()
}

// InsertTriple inserts a single triple
func (s *TripleStore) InsertTriple(triple *rdf.Triple) error {
	return s.InsertTriplesBatch([]*rdf.Triple{triple})
}

// InsertTriplesBatch inserts all triples in one transaction
func (s *TripleStore) InsertTriplesBatch(triples []*rdf.Triple) error {
	if len(triples) == 0 {
		return nil
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() // #nosec G104 - no-op after a successful commit

	for _, triple := range triples {
		if err := s.insertTripleInTxn(txn, triple); err != nil {
			return err
		}
	}

	return txn.Commit()
}

type encodedTriple struct {
	subj, pred, obj EncodedTerm
}

func (s *TripleStore) encodeTriple(txn Transaction, triple *rdf.Triple, storeStrings bool) (encodedTriple, error) {
	var enc encodedTriple
	var str *string
	var err error

	enc.subj, str, err = s.encoder.EncodeTerm(triple.Subject)
	if err != nil {
		return enc, fmt.Errorf("failed to encode subject: %w", err)
	}
	if storeStrings {
		if err := s.storeString(txn, enc.subj, str); err != nil {
			return enc, err
		}
	}

	enc.pred, str, err = s.encoder.EncodeTerm(triple.Predicate)
	if err != nil {
		return enc, fmt.Errorf("failed to encode predicate: %w", err)
	}
	if storeStrings {
		if err := s.storeString(txn, enc.pred, str); err != nil {
			return enc, err
		}
	}

	enc.obj, str, err = s.encoder.EncodeTerm(triple.Object)
	if err != nil {
		return enc, fmt.Errorf("failed to encode object: %w", err)
	}
	if storeStrings {
		if err := s.storeString(txn, enc.obj, str); err != nil {
			return enc, err
		}
	}

	return enc, nil
}

// insertTripleInTxn inserts a triple within an existing transaction
func (s *TripleStore) insertTripleInTxn(txn Transaction, triple *rdf.Triple) error {
	enc, err := s.encodeTriple(txn, triple, true)
	if err != nil {
		return err
	}

	// Empty value for all index entries
	emptyValue := []byte{}

	if err := txn.Set(TableSPO, s.encoder.EncodeKey(enc.subj, enc.pred, enc.obj), emptyValue); err != nil {
		return err
	}
	if err := txn.Set(TablePOS, s.encoder.EncodeKey(enc.pred, enc.obj, enc.subj), emptyValue); err != nil {
		return err
	}
	return txn.Set(TableOSP, s.encoder.EncodeKey(enc.obj, enc.subj, enc.pred), emptyValue)
}

// storeString stores a string in the id2str table if provided
func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}

	// The hash portion of the encoded term is the key
	key := encoded[1:]
	value := []byte(*str)

	existing, err := txn.Get(TableID2Str, key)
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	return txn.Set(TableID2Str, key, value)
}

// DeleteTriple deletes a triple from the store
func (s *TripleStore) DeleteTriple(triple *rdf.Triple) error {
	return s.DeleteTriplesBatch([]*rdf.Triple{triple})
}

// DeleteTriplesBatch deletes all triples in one transaction.
// Strings in id2str are kept since other triples may still reference them.
func (s *TripleStore) DeleteTriplesBatch(triples []*rdf.Triple) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() // #nosec G104 - no-op after a successful commit

	for _, triple := range triples {
		enc, err := s.encodeTriple(txn, triple, false)
		if err != nil {
			return err
		}
		if err := txn.Delete(TableSPO, s.encoder.EncodeKey(enc.subj, enc.pred, enc.obj)); err != nil {
			return err
		}
		if err := txn.Delete(TablePOS, s.encoder.EncodeKey(enc.pred, enc.obj, enc.subj)); err != nil {
			return err
		}
		if err := txn.Delete(TableOSP, s.encoder.EncodeKey(enc.obj, enc.subj, enc.pred)); err != nil {
			return err
		}
	}

	return txn.Commit()
}

// ContainsTriple checks if a triple exists in the store
func (s *TripleStore) ContainsTriple(triple *rdf.Triple) (bool, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback() // #nosec G104 - read-only transaction

	enc, err := s.encodeTriple(txn, triple, false)
	if err != nil {
		return false, err
	}

	_, err = txn.Get(TableSPO, s.encoder.EncodeKey(enc.subj, enc.pred, enc.obj))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of triples in the store
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback() // #nosec G104 - read-only transaction

	it, err := txn.Scan(TableSPO, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}

	return count, nil
}
