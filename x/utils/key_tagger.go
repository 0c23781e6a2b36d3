package utils

import (
	"encoding/hex"
	"strings"

	"github.com/tendermint/tendermint/libs/common"
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/store"
)

var (
	recordSet    = []byte("s")
	recordDelete = []byte("d")
)

// KeyTagger records every key that the wrapped handlers write or
// delete during DeliverTx and appends one tag per key to the result.
// The tag key is the upper-case hex encoding of the store key, the
// tag value is "s" for set and "d" for delete, so clients can
// subscribe to state changes without knowing the handler internals.
//
// Only successful deliveries are tagged. On error the recorded
// changes are dropped together with the result.
type KeyTagger struct{}

var _ warden.Decorator = KeyTagger{}

// NewKeyTagger creates a KeyTagger decorator
func NewKeyTagger() KeyTagger {
	return KeyTagger{}
}

// Check does nothing. Tags are only returned on DeliverTx.
func (KeyTagger) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx, next warden.Checker) (*warden.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver passes a recording store down the stack and on success
// translates the observed writes into result tags.
func (KeyTagger) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx, next warden.Deliverer) (*warden.DeliverResult, error) {
	record := newRecordingStore(db)
	res, err := next.Deliver(ctx, record, tx)
	if err != nil {
		return res, err
	}
	res.Tags = append(res.Tags, record.KVPairs()...)
	return res, nil
}

// recordingStore wraps a KVStore and remembers which keys were
// modified. Reads pass through to the backing store untouched.
type recordingStore struct {
	warden.KVStore
	changes map[string][]byte
}

var _ warden.CacheableKVStore = (*recordingStore)(nil)

func newRecordingStore(db warden.KVStore) *recordingStore {
	return &recordingStore{
		KVStore: db,
		changes: make(map[string][]byte),
	}
}

// KVPairs returns the recorded changes as a sorted tag list.
func (r *recordingStore) KVPairs() common.KVPairs {
	if len(r.changes) == 0 {
		return nil
	}
	pairs := make(common.KVPairs, 0, len(r.changes))
	for key, op := range r.changes {
		pairs = append(pairs, common.KVPair{
			Key:   []byte(strings.ToUpper(hex.EncodeToString([]byte(key)))),
			Value: op,
		})
	}
	pairs.Sort()
	return pairs
}

// Set records the key before writing it to the backing store.
func (r *recordingStore) Set(key, value []byte) error {
	r.changes[string(key)] = recordSet
	return r.KVStore.Set(key, value)
}

// Delete records the key before deleting it from the backing store.
func (r *recordingStore) Delete(key []byte) error {
	r.changes[string(key)] = recordDelete
	return r.KVStore.Delete(key)
}

// NewBatch routes batched operations through the recorder, so they
// are captured when the batch is written.
func (r *recordingStore) NewBatch() warden.Batch {
	return store.NewNonAtomicBatch(r)
}

// CacheWrap lets savepoints nest inside the recorder. Writes that
// are discarded never reach the recorder and produce no tags.
func (r *recordingStore) CacheWrap() warden.KVCacheWrap {
	return store.NewBTreeCacheWrap(r, r.NewBatch(), nil)
}
