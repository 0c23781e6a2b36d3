package orm

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

// queryRangeLimit is the maximum number of results a single range query can
// return. Pagination must be used to fetch more results.
const queryRangeLimit = 50

// prefixRange turns a prefix into (start, end) to create
// an iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed the last byte? then we need to
	// carry over to the previous byte
	for end[l] == 0 {
		if l == 0 {
			// prefix is all 0xff, no end of range exists
			return prefix, nil
		}
		l--
		end[l]++
	}
	return prefix, end
}

// queryPrefix returns all key-value pairs stored with keys that begin with
// given prefix. Result size is not limited, this function is not intended
// for iterating over large collections.
func queryPrefix(db warden.ReadOnlyKVStore, prefix []byte) ([]warden.Model, error) {
	it, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	return consumeIterator(it)
}

// consumeIterator reads all remaining data from the iterator into a single
// collection. The iterator is released.
func consumeIterator(it warden.Iterator) ([]warden.Model, error) {
	defer it.Release()

	var out []warden.Model
	for {
		switch key, value, err := it.Next(); {
		case err == nil:
			out = append(out, warden.Model{Key: key, Value: value})
		case errors.ErrIteratorDone.Is(err):
			return out, nil
		default:
			return nil, errors.Wrap(err, "iterator")
		}
	}
}

// paginatedIterator returns up to given amount of results from the wrapped
// iterator before reporting the end of data.
type paginatedIterator struct {
	it        warden.Iterator
	remaining int
}

var _ warden.Iterator = (*paginatedIterator)(nil)

func (p *paginatedIterator) Next() ([]byte, []byte, error) {
	if p.remaining <= 0 {
		return nil, nil, errors.ErrIteratorDone
	}
	p.remaining--
	return p.it.Next()
}

func (p *paginatedIterator) Release() {
	p.it.Release()
}
