package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/imamik/paxosfleet/internal/graph"
	"github.com/imamik/paxosfleet/internal/provisioning"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("not found")

const (
	teardownPrefix = "teardown:"
	outputPrefix   = "output:"
	runIDKey       = "meta:run-id"
)

// Store persists the teardown ledger and exported outputs of one deployment
// so that a later process can inspect or tear it down.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store for deployment under dir.
func Open(dir, deployment string) (*Store, error) {
	if deployment == "" {
		return nil, fmt.Errorf("deployment name is required")
	}
	opts := badger.DefaultOptions(filepath.Clean(filepath.Join(dir, deployment)))
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 20)
	return open(opts)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements graph.Ledger.
func (s *Store) Record(td graph.Teardown) error {
	if td.Node == "" {
		return fmt.Errorf("teardown record has no node")
	}
	return s.put(teardownPrefix+td.Node, td)
}

// Delete removes the teardown record for node, typically after it was undone.
func (s *Store) Delete(node string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(teardownPrefix + node))
	})
}

// Teardowns returns persisted records, most recently resolved first.
func (s *Store) Teardowns() ([]graph.Teardown, error) {
	var out []graph.Teardown
	err := s.scan(teardownPrefix, func(v []byte) error {
		var td graph.Teardown
		if err := json.Unmarshal(v, &td); err != nil {
			return err
		}
		out = append(out, td)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read teardowns: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out, nil
}

// SaveOutputs replaces any previously saved output with the same key.
func (s *Store) SaveOutputs(outputs []provisioning.Output) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, o := range outputs {
			data, err := json.Marshal(o)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(outputPrefix+o.Key), data); err != nil {
				return fmt.Errorf("failed to save output %s: %w", o.Key, err)
			}
		}
		return nil
	})
}

// Outputs returns saved outputs sorted by key.
func (s *Store) Outputs() ([]provisioning.Output, error) {
	var out []provisioning.Output
	err := s.scan(outputPrefix, func(v []byte) error {
		var o provisioning.Output
		if err := json.Unmarshal(v, &o); err != nil {
			return err
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs: %w", err)
	}
	return out, nil
}

// SetRunID remembers the run id of the last deployment.
func (s *Store) SetRunID(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runIDKey), []byte(id))
	})
}

// RunID returns the saved run id or ErrNotFound.
func (s *Store) RunID() (string, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runIDKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error {
			id = string(v)
			return nil
		})
	})
	return id, err
}

// Reset drops every teardown record and output.
func (s *Store) Reset() error {
	return s.db.DropAll()
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// scan calls fn for every value under prefix in key order.
func (s *Store) scan(prefix string, fn func([]byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			if err := item.Value(fn); err != nil {
				return fmt.Errorf("%s: %w", strings.TrimPrefix(string(item.Key()), prefix), err)
			}
		}
		return nil
	})
}
