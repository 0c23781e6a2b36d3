package store

import "github.com/warden-one/warden"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = warden.ReadOnlyKVStore
type SetDeleter = warden.SetDeleter
type KVStore = warden.KVStore
type Batch = warden.Batch
type Iterator = warden.Iterator
type CacheableKVStore = warden.CacheableKVStore
type KVCacheWrap = warden.KVCacheWrap
type CommitKVStore = warden.CommitKVStore
type CommitID = warden.CommitID

// Model groups a key-value pair, used when returning iterator contents.
type Model = warden.Model

// Pair is a helper to construct a Model
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
