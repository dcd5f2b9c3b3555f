package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"webrag/internal/domain"
)

var bucketVectors = []byte("vectors")

// BoltIndex is a vector index persisted in BoltDB with an in-memory
// mirror for search. Entries are stored under a monotonic sequence key
// so insertion order, and with it the tie-break order, survives
// restarts. Search is an exact brute-force scan over the mirror.
type BoltIndex struct {
	db      *bbolt.DB
	mu      sync.RWMutex
	entries []entry
	ids     map[string]struct{}
	dim     int
	nextSeq uint64
}

type storedEntry struct {
	ID     string       `json:"id"`
	Vector []float32    `json:"v"`
	Chunk  domain.Chunk `json:"c"`
}

// NewBoltIndex opens (or creates) a BoltDB-backed vector index and
// loads existing entries into memory in insertion order.
func NewBoltIndex(path string) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	x := &BoltIndex{
		db:  db,
		ids: make(map[string]struct{}),
	}
	if err := x.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	return x, nil
}

// load reads all persisted entries. Bucket keys are big-endian
// sequence numbers, so bbolt's key order is insertion order.
func (x *BoltIndex) load() error {
	return x.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt index entry %x: %w", k, err)
			}
			x.entries = append(x.entries, entry{
				id:     stored.ID,
				vector: stored.Vector,
				chunk:  stored.Chunk,
			})
			x.ids[stored.ID] = struct{}{}
			x.dim = len(stored.Vector)
			if seq := binary.BigEndian.Uint64(k); seq >= x.nextSeq {
				x.nextSeq = seq + 1
			}
			return nil
		})
	})
}

// Insert persists one entry and appends it to the in-memory mirror.
// The uniqueness and dimensionality checks and the append happen under
// one lock so concurrent inserts cannot race past them.
func (x *BoltIndex) Insert(id string, vector []float32, chunk domain.Chunk) error {
	if len(vector) == 0 {
		return &domain.ConfigError{Param: "vector", Reason: "must not be empty"}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.ids[id]; exists {
		return &domain.DuplicateIDError{ID: id}
	}
	if len(x.entries) > 0 && len(vector) != x.dim {
		return &domain.DimensionError{Want: x.dim, Got: len(vector)}
	}

	v := make([]float32, len(vector))
	copy(v, vector)

	data, err := json.Marshal(storedEntry{ID: id, Vector: v, Chunk: chunk})
	if err != nil {
		return err
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, x.nextSeq)

	err = x.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist vector %s: %w", id, err)
	}

	x.entries = append(x.entries, entry{id: id, vector: v, chunk: chunk})
	x.ids[id] = struct{}{}
	x.dim = len(v)
	x.nextSeq++
	return nil
}

// Query returns up to k entries by descending cosine similarity with
// ties broken by insertion order.
func (x *BoltIndex) Query(vector []float32, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, &domain.ConfigError{Param: "k", Reason: "must be at least 1"}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(vector) != x.dim {
		return nil, &domain.DimensionError{Want: x.dim, Got: len(vector)}
	}

	return topK(x.entries, vector, k), nil
}

func (x *BoltIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *BoltIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.entries) == 0 {
		return 0
	}
	return x.dim
}

func (x *BoltIndex) Close() error {
	return x.db.Close()
}
