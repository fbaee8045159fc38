package store

import (
	"context"
	"errors"
	"testing"
)

func runKVContract(t *testing.T, kv KV) {
	ctx := context.Background()

	var id [32]byte
	id[0] = 0xAB

	if _, err := kv.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: got %v, want ErrNotFound", err)
	}

	if err := kv.Put(ctx, id, []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := kv.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Get after Put: got %q, want %q", got, "hello")
	}

	if err := kv.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
	}

	if err := kv.Delete(ctx, id); err != nil {
		t.Fatalf("Delete of an absent id should not error, got %v", err)
	}

	var idA, idB [32]byte
	idA[0], idB[0] = 1, 2
	batch := kv.NewBatch()
	batch.Put(idA, []byte("a"))
	batch.Put(idB, []byte("b"))
	if err := batch.Commit(ctx); err != nil {
		t.Fatalf("batch Commit: %v", err)
	}
	if v, err := kv.Get(ctx, idA); err != nil || string(v) != "a" {
		t.Fatalf("Get idA after batch: %q, %v", v, err)
	}
	if v, err := kv.Get(ctx, idB); err != nil || string(v) != "b" {
		t.Fatalf("Get idB after batch: %q, %v", v, err)
	}

	delBatch := kv.NewBatch()
	delBatch.Put(idA, []byte("a2"))
	delBatch.Delete(idB)
	if err := delBatch.Commit(ctx); err != nil {
		t.Fatalf("batch Commit: %v", err)
	}
	if v, err := kv.Get(ctx, idA); err != nil || string(v) != "a2" {
		t.Fatalf("Get idA after second batch: %q, %v", v, err)
	}
	if _, err := kv.Get(ctx, idB); !errors.Is(err, ErrNotFound) {
		t.Fatalf("idB should have been removed by the batch delete, got %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	t.Parallel()
	runKVContract(t, NewMemoryStore())
}

func TestMemoryStoreGetIsDefensiveCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	var id [32]byte
	id[0] = 9

	value := []byte("original")
	if err := s.Put(ctx, id, value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value[0] = 'X'

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("mutating the caller's slice after Put altered the stored value: got %q", got)
	}

	got[0] = 'Y'
	got2, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got2) != "original" {
		t.Fatalf("mutating a slice returned by Get altered the stored value: got %q", got2)
	}
}

func TestPebbleStoreContract(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := OpenPebbleStore(dir)
	if err != nil {
		t.Fatalf("OpenPebbleStore: %v", err)
	}
	defer s.Close()

	runKVContract(t, s)
}
