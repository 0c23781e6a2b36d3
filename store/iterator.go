package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
	"github.com/warden-one/warden/errors"
)

///////////////////////////////////////////////////////
// From Items to Iterator

// btreeIter draws items from a btree walk. The items are delivered
// through a channel so the recursive walk can be paused between reads.
type btreeIter struct {
	read    chan btree.Item
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	reverse bool
}

func newBtreeIter(reverse bool) *btreeIter {
	return &btreeIter{
		read:    make(chan btree.Item),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		reverse: reverse,
	}
}

// insert delivers one item to the consumer. It aborts the walk when
// the iterator was released.
func (b *btreeIter) insert(item btree.Item) bool {
	select {
	case b.read <- item:
		return true
	case <-b.stop:
		return false
	}
}

func ascendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	iter := newBtreeIter(false)

	go func() {
		defer close(iter.done)
		defer close(iter.read)
		switch {
		case start == nil && end == nil:
			bt.Ascend(iter.insert)
		case start == nil: // end != nil
			bt.AscendLessThan(bkey{end}, iter.insert)
		case end == nil: // start != nil
			bt.AscendGreaterOrEqual(bkey{start}, iter.insert)
		default: // both != nil
			bt.AscendRange(bkey{start}, bkey{end}, iter.insert)
		}
	}()

	return iter
}

func descendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	iter := newBtreeIter(true)

	go func() {
		defer close(iter.done)
		defer close(iter.read)
		switch {
		case start == nil && end == nil:
			bt.Descend(iter.insert)
		case start == nil: // end != nil
			bt.DescendLessOrEqual(bkeyLess{end}, iter.insert)
		case end == nil: // start != nil
			bt.DescendGreaterThan(bkeyLess{start}, iter.insert)
		default: // both != nil
			bt.DescendRange(bkeyLess{end}, bkeyLess{start}, iter.insert)
		}
	}()

	return iter
}

// next returns the next item of the walk, or ErrIteratorDone when the
// range is exhausted.
func (b *btreeIter) next() (keyer, error) {
	data, hasMore := <-b.read
	if !hasMore {
		return nil, errors.Wrap(errors.ErrIteratorDone, "btree")
	}
	key, ok := data.(keyer)
	if !ok {
		return nil, errors.Wrapf(errors.ErrDatabase, "unexpected btree item: %T", data)
	}
	return key, nil
}

// release aborts the producing walk and waits until it terminated.
// Once release returns the btree is guaranteed to be unused, so the
// caller may write to it again.
func (b *btreeIter) release() {
	b.once.Do(func() {
		close(b.stop)
		<-b.done
	})
}

func (b *btreeIter) wrap(parent Iterator) *itemIter {
	return &itemIter{
		cache:  b,
		parent: parent,
	}
}

// itemIter combines the btree overlay with the parent iterator into
// one ordered view. Overlay writes shadow parent entries, overlay
// deletes hide them.
type itemIter struct {
	cache  *btreeIter
	parent Iterator

	// one item of lookahead for each source
	primed      bool
	cacheHead   keyer
	parentKey   []byte
	parentValue []byte
	parentDone  bool
	released    bool
}

var _ Iterator = (*itemIter)(nil)

// Next returns the next key/value pair of the merged iteration, or
// ErrIteratorDone when both sources are exhausted.
func (i *itemIter) Next() ([]byte, []byte, error) {
	if i.released {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "released")
	}
	if !i.primed {
		if err := i.advanceCache(); err != nil {
			return nil, nil, err
		}
		if err := i.advanceParent(); err != nil {
			return nil, nil, err
		}
		i.primed = true
	}

	for {
		switch {
		case i.cacheHead == nil && i.parentDone:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "exhausted")
		case i.cacheHead == nil:
			return i.popParent()
		}

		var cmp int
		if i.parentDone {
			cmp = -1 // only the overlay is left
		} else {
			cmp = bytes.Compare(i.cacheHead.Key(), i.parentKey)
			if i.cache.reverse {
				cmp = -cmp
			}
		}

		switch {
		case cmp > 0: // parent entry comes first
			return i.popParent()
		case cmp < 0: // overlay entry comes first
			item := i.cacheHead
			if err := i.advanceCache(); err != nil {
				return nil, nil, err
			}
			if set, ok := item.(setItem); ok {
				return set.key, set.value, nil
			}
			// a delete of an entry the parent does not have, skip
		default: // same key, the overlay shadows the parent
			item := i.cacheHead
			if err := i.advanceCache(); err != nil {
				return nil, nil, err
			}
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
			if set, ok := item.(setItem); ok {
				return set.key, set.value, nil
			}
			// deleted, hide the parent entry and continue
		}
	}
}

// popParent returns the buffered parent entry and refills the buffer.
func (i *itemIter) popParent() ([]byte, []byte, error) {
	key, value := i.parentKey, i.parentValue
	if err := i.advanceParent(); err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

func (i *itemIter) advanceCache() error {
	item, err := i.cache.next()
	switch {
	case err == nil:
		i.cacheHead = item
		return nil
	case errors.ErrIteratorDone.Is(err):
		i.cacheHead = nil
		return nil
	default:
		return err
	}
}

func (i *itemIter) advanceParent() error {
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.parentKey, i.parentValue = key, value
		return nil
	case errors.ErrIteratorDone.Is(err):
		i.parentDone = true
		i.parentKey, i.parentValue = nil, nil
		return nil
	default:
		return err
	}
}

// Release frees both sources. It blocks until the btree walk has
// terminated, so writing to the underlying store is safe afterwards.
func (i *itemIter) Release() {
	if !i.released {
		i.released = true
		i.cache.release()
		i.parent.Release()
	}
}
