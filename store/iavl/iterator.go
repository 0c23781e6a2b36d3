package iavl

import (
	"sync"

	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/store"
)

// lazyIterator streams the results of a tree range scan. The scan
// callback feeds models through a channel, so results are produced on
// demand and the scan can be aborted early.
type lazyIterator struct {
	read chan store.Model
	stop chan struct{}
	once sync.Once
}

var _ store.Iterator = (*lazyIterator)(nil)

func newLazyIterator() *lazyIterator {
	return &lazyIterator{
		read: make(chan store.Model),
		stop: make(chan struct{}),
	}
}

// add implements the iavl range scan callback. Returning true aborts
// the scan.
func (i *lazyIterator) add(key []byte, value []byte) bool {
	m := store.Model{Key: key, Value: value}
	select {
	case i.read <- m:
		// Keep the scan going, add will be called again.
		return false
	case <-i.stop:
		// Released, this is the last add call.
		return true
	}
}

// Next returns the next key/value pair of the scan, or ErrIteratorDone
// when the range is exhausted.
func (i *lazyIterator) Next() ([]byte, []byte, error) {
	data, hasMore := <-i.read
	if !hasMore {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "lazy iterator")
	}
	return data.Key, data.Value, nil
}

// Release aborts the producing scan. It is safe to call it any number
// of times, also while the scan is still feeding items.
func (i *lazyIterator) Release() {
	i.once.Do(func() {
		close(i.stop)
	})
}
