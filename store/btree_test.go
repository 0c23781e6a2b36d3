package store

import (
	"testing"

	"github.com/warden-one/warden/wardentest/assert"
)

func memBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestBTreeCacheGetSet(t *testing.T) {
	NewTestSuite(memBase).GetSet(t)
}

func TestBTreeCacheConflicts(t *testing.T) {
	NewTestSuite(memBase).CacheConflicts(t)
}

func TestBTreeFuzzIterator(t *testing.T) {
	NewTestSuite(memBase).FuzzIterator(t)
}

func TestBTreeIteratorWithConflicts(t *testing.T) {
	NewTestSuite(memBase).IteratorWithConflicts(t)
}

func TestLogableStore(t *testing.T) {
	kv, log := LogableStore()
	assert.Nil(t, kv.Set([]byte("a"), []byte("1")))
	assert.Nil(t, kv.Set([]byte("b"), []byte("2")))
	assert.Nil(t, kv.Delete([]byte("a")))

	ops := log.ShowOps()
	if len(ops) != 3 {
		t.Fatalf("expected 3 ops, got %d", len(ops))
	}
	if !ops[0].IsSetOp() || !ops[1].IsSetOp() {
		t.Fatal("first two operations must be sets")
	}
	if ops[2].IsSetOp() {
		t.Fatal("last operation must be a delete")
	}
}
