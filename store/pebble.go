package store

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

// PebbleStore is the production node-store backing, an embedded LSM engine.
// Grounded on luxfi-consensus's use of cockroachdb/pebble as its database
// engine (go.mod requires github.com/cockroachdb/pebble directly) - the
// same engine geth itself ships as an alternative to goleveldb.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebbleStore opens (creating if absent) a pebble-backed store at dir.
func OpenPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

// Close releases the underlying pebble database handle.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func (s *PebbleStore) Get(_ context.Context, id [32]byte) ([]byte, error) {
	v, closer, err := s.db.Get(id[:])
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, closer.Close()
}

func (s *PebbleStore) Put(_ context.Context, id [32]byte, value []byte) error {
	return s.db.Set(id[:], value, pebble.Sync)
}

func (s *PebbleStore) Delete(_ context.Context, id [32]byte) error {
	return s.db.Delete(id[:], pebble.Sync)
}

func (s *PebbleStore) NewBatch() Batch {
	return &pebbleBatch{batch: s.db.NewBatch()}
}

type pebbleBatch struct {
	batch *pebble.Batch
}

func (b *pebbleBatch) Put(id [32]byte, value []byte) {
	_ = b.batch.Set(id[:], value, nil)
}

func (b *pebbleBatch) Delete(id [32]byte) {
	_ = b.batch.Delete(id[:], nil)
}

func (b *pebbleBatch) Commit(_ context.Context) error {
	return b.batch.Commit(pebble.Sync)
}
