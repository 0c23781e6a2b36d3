package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/store/iavl"
)

// rawQueryHandler serves raw key and prefix queries directly from the store.
type rawQueryHandler struct{}

var _ warden.QueryHandler = rawQueryHandler{}

func (rawQueryHandler) Query(db warden.ReadOnlyKVStore, mod string, data []byte) ([]warden.Model, error) {
	switch mod {
	case warden.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []warden.Model{warden.Pair(data, value)}, nil
	case warden.PrefixQueryMod:
		iter, err := db.Iterator(nil, nil)
		if err != nil {
			return nil, err
		}
		defer iter.Release()
		var models []warden.Model
		for {
			k, v, err := iter.Next()
			if errors.ErrIteratorDone.Is(err) {
				return models, nil
			}
			if err != nil {
				return nil, err
			}
			models = append(models, warden.Pair(k, v))
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %q", mod)
	}
}

func TestABCIStore(t *testing.T) {
	qr := warden.NewQueryRouter()
	qr.Register("/", rawQueryHandler{})
	app := NewStoreApp("abci-store", iavl.MockCommitStore(), qr, context.Background())

	db := app.DeliverStore()
	require.NoError(t, db.Set([]byte("hello"), []byte("world")))
	require.NoError(t, db.Set([]byte("name"), []byte("warden")))
	app.Commit()

	store := NewABCIStore(app)

	value, err := store.Get([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), value)

	value, err = store.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, value)

	has, err := store.Has([]byte("name"))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = store.Has([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestABCIStoreIterator(t *testing.T) {
	qr := warden.NewQueryRouter()
	qr.Register("/", rawQueryHandler{})
	app := NewStoreApp("abci-store", iavl.MockCommitStore(), qr, context.Background())

	db := app.DeliverStore()
	require.NoError(t, db.Set([]byte("aaa"), []byte("1")))
	require.NoError(t, db.Set([]byte("bbb"), []byte("2")))
	app.Commit()

	store := NewABCIStore(app)

	// only the full range is supported
	_, err := store.Iterator([]byte("aaa"), nil)
	assert.Error(t, err)
	_, err = store.ReverseIterator(nil, nil)
	assert.Error(t, err)

	iter, err := store.Iterator(nil, nil)
	require.NoError(t, err)
	defer iter.Release()

	k, v, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("aaa"), k)
	assert.Equal(t, []byte("1"), v)

	k, v, err = iter.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("bbb"), k)
	assert.Equal(t, []byte("2"), v)

	_, _, err = iter.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))
}
