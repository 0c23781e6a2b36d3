/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index (which may be composite),
and may possess secondary indexes.
* It may possess one or more secondary indexes (1:1 or 1:N)
* Easy queries for one and iteration.

For inspiration, look at [storm](https://github.com/asdine/storm) built on top of [bolt kvstore](https://github.com/boltdb/bolt#using-buckets).
* Do not use so much reflection magic. Better do stuff compile-time static, even if it is a bit of boilerplate.
* Consider general usability flow from that project
*/
package orm

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

const (
	// SeqID is a constant to use to get a default ID sequence
	SeqID = "id"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a generic holder that stores data as well
// as references to secondary indexes and sequences.
//
// This is a generic building block that should generally
// be embedded in a type-safe wrapper to ensure all data
// is the same type.
// Bucket is a prefixed subspace of the DB
// proto defines the default Model, all elements of this type
type Bucket struct {
	name   string
	prefix []byte
	proto  Cloneable
	// indexes is a list, not a map, so that updates are applied in
	// registration order and the write set stays deterministic.
	indexes []namedIndex
}

type namedIndex struct {
	publicName string
	Index
}

var _ warden.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket
func (b Bucket) Name() string {
	return b.name
}

// Register registers this Bucket and all indexes.
// You can define a name here for queries, which is
// different than the bucket name used to prefix the data
func (b Bucket) Register(name string, r warden.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for _, idx := range b.indexes {
		r.Register(root+"/"+idx.publicName, idx.Index)
	}
}

// Query handles queries from the QueryRouter
func (b Bucket) Query(db warden.ReadOnlyKVStore, mod string, data []byte) ([]warden.Model, error) {
	switch mod {
	case warden.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		res := []warden.Model{{Key: key, Value: value}}
		return res, nil
	case warden.PrefixQueryMod:
		prefix := b.DBKey(data)
		return queryPrefix(db, prefix)
	case warden.RangeQueryMod:
		start, end, err := parseQueryRange(data)
		if err != nil {
			return nil, errors.Wrap(err, "query data")
		}
		first := b.DBKey(start)
		var last []byte
		if end == nil {
			_, last = prefixRange(b.prefix)
		} else {
			last = b.DBKey(end)
		}
		it, err := db.Iterator(first, last)
		if err != nil {
			return nil, errors.Wrap(err, "iterator")
		}
		return consumeIterator(&paginatedIterator{it: it, remaining: queryRangeLimit})
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}
}

// parseQueryRange splits raw range query data into start and end. Format is
// hex encoded <start>[:<end>] with both values optional.
func parseQueryRange(raw []byte) (start, end []byte, err error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	chunks := bytes.SplitN(raw, []byte(":"), 3)
	if len(chunks) > 2 {
		return nil, nil, errors.Wrap(errors.ErrInput, "invalid format")
	}
	decodeHex := func(b []byte) ([]byte, error) {
		if len(b) == 0 {
			return nil, nil
		}
		dst := make([]byte, hex.DecodedLen(len(b)))
		if _, err := hex.Decode(dst, b); err != nil {
			return nil, errors.Wrap(errors.ErrInput, "not hex data")
		}
		return dst, nil
	}
	if start, err = decodeHex(chunks[0]); err != nil {
		return nil, nil, err
	}
	if len(chunks) == 2 {
		if end, err = decodeHex(chunks[1]); err != nil {
			return nil, nil, err
		}
	}
	return start, end, nil
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	// Long story: annoying bug... storing with keys "ABC" and "LED"
	// would overwrite each other, also for queries.... huh?
	// turns out name was 4 char,
	// append([]byte(name), ':') in NewBucket would allocate with
	// capacity 8, using 5.
	// append(b.prefix, key...) would just append to this slice and
	// return b.prefix. The next call would do the same an overwrite it.
	// 3 hours and some dlv-ing later, new code here...
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get one element
func (b Bucket) Get(db warden.ReadOnlyKVStore, key []byte) (Object, error) {
	dbkey := b.DBKey(key)
	bz, err := db.Get(dbkey)
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return b.Parse(key, bz)
}

// Parse takes a key and value data (warden.Model) and
// reconstructs the data this Bucket would return.
//
// Used internally as part of Get.
// It is exposed mainly as a test helper, but can work for
// any code that wants to parse
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrState, "cannot parse %s content: %v", b.name, err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save will write a model, it must be of the same type as proto
func (b Bucket) Save(db warden.KVStore, model Object) error {
	err := model.Validate()
	if err != nil {
		return errors.Wrap(err, "invalid object")
	}

	bz, err := model.Value().Marshal()
	if err != nil {
		return err
	}
	err = b.updateIndexes(db, model.Key(), model)
	if err != nil {
		return err
	}

	// now save this one
	return db.Set(b.DBKey(model.Key()), bz)
}

// Delete will remove the value at a key
func (b Bucket) Delete(db warden.KVStore, key []byte) error {
	err := b.updateIndexes(db, key, nil)
	if err != nil {
		return err
	}

	// now save this one
	dbkey := b.DBKey(key)
	return db.Delete(dbkey)
}

func (b Bucket) updateIndexes(db warden.KVStore, key []byte, model Object) error {
	// update all indexes
	if len(b.indexes) > 0 {
		prev, err := b.Get(db, key)
		if err != nil {
			return err
		}
		for _, idx := range b.indexes {
			err = idx.Update(db, prev, model)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// hasIndex returns true if an index was registered under that name.
func (b Bucket) hasIndex(name string) bool {
	for _, idx := range b.indexes {
		if idx.publicName == name {
			return true
		}
	}
	return false
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// WithIndex returns a copy of this bucket with given index,
// panics if it an index with that name is already registered.
//
// Designed to be chained.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	return b.WithMultiKeyIndex(name, asMultiKeyIndexer(indexer), unique)
}

// WithMultiKeyIndex returns a copy of this bucket with given index,
// panics if it an index with that name is already registered.
//
// Designed to be chained.
func (b Bucket) WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) Bucket {
	return b.withIndex(name, NewMultiKeyIndex(b.name+"_"+name, indexer, unique, b.DBKey))
}

// WithNativeIndex returns a copy of this bucket with given index that is
// maintained using database native keys, one per indexed value. Use this
// instead of WithMultiKeyIndex for indexes that can grow large.
func (b Bucket) WithNativeIndex(name string, indexer MultiKeyIndexer) Bucket {
	return b.withIndex(name, NewNativeIndex(b.name+"_"+name, indexer, b.DBKey))
}

func (b Bucket) withIndex(name string, idx Index) Bucket {
	// no duplicate indexes! (panic on init)
	if b.hasIndex(name) {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	indexes := make([]namedIndex, len(b.indexes), len(b.indexes)+1)
	copy(indexes, b.indexes)
	b.indexes = append(indexes, namedIndex{publicName: name, Index: idx})
	return b
}

// Index returns the index with given name, or an error if not registered.
func (b Bucket) Index(name string) (Index, error) {
	for _, idx := range b.indexes {
		if idx.publicName == name {
			return idx.Index, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidIndex, "no index with name %s", name)
}

// GetIndexed queries the named index for the given key
func (b Bucket) GetIndexed(db warden.ReadOnlyKVStore, name string, key []byte) ([]Object, error) {
	idx, err := b.Index(name)
	if err != nil {
		return nil, err
	}
	refs, err := consumeIteratorKeys(idx.Keys(db, key))
	if err != nil {
		return nil, err
	}
	return b.readRefs(db, refs)
}

func (b Bucket) readRefs(db warden.ReadOnlyKVStore, refs [][]byte) ([]Object, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	var err error
	objs := make([]Object, len(refs))
	for i, key := range refs {
		objs[i], err = b.Get(db, key)
		if err != nil {
			return nil, err
		}
	}
	return objs, nil
}
