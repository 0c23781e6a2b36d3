package orm

import (
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/errors"
)

// MultiRef is a set of references to other entities, stored as one value
// under a single index key. Refs are kept sorted so the serialization is
// deterministic.
type MultiRef struct {
	Refs [][]byte `json:"refs,omitempty"`
}

func (m *MultiRef) GetRefs() [][]byte {
	if m != nil {
		return m.Refs
	}
	return nil
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// VersionedIDRef is a reference to a particular version of an entity.
type VersionedIDRef struct {
	// ID is the entity identifier, unique within a bucket.
	ID []byte `json:"id,omitempty"`
	// Version starts at 1 and is increased by one with every update.
	Version uint32 `json:"version,omitempty"`
}

func (m *VersionedIDRef) GetID() []byte {
	if m != nil {
		return m.ID
	}
	return nil
}

func (m *VersionedIDRef) GetVersion() uint32 {
	if m != nil {
		return m.Version
	}
	return 0
}

func (m *VersionedIDRef) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *VersionedIDRef) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// Counter is a trivial model keeping a single number. It is used mostly in
// tests, whenever any stored entity is required.
type Counter struct {
	Count int64 `json:"count"`
}

// NewCounter returns a counter with given initial state.
func NewCounter(count int64) *Counter {
	return &Counter{Count: count}
}

func (c *Counter) GetCount() int64 {
	if c != nil {
		return c.Count
	}
	return 0
}

func (c *Counter) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Counter) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

// Validate returns an error if the counter state is negative.
func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "count must be non negative")
	}
	return nil
}

func (c *Counter) Copy() CloneableData {
	return &Counter{Count: c.Count}
}
