package warden

import (
	"fmt"

	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/errors"
)

// Metadata is carried by every persistent entity and message. The schema
// version tells the migration machinery which shape of the data it is
// looking at.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

func (m *Metadata) GetSchema() uint32 {
	if m != nil {
		return m.Schema
	}
	return 0
}

func (m *Metadata) String() string {
	if m == nil {
		return "metadata: nil"
	}
	return fmt.Sprintf("metadata: schema=%d", m.Schema)
}

func (m *Metadata) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *Metadata) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// Copy returns a copy of this object. This method is helpful when implementing
// orm.CloneableData interface to make a copy of the header.
func (m *Metadata) Copy() *Metadata {
	cpy := *m
	return &cpy
}

// Validate returns an error if the metadata content is not valid. Nil
// metadata is considered not valid as well.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "no metadata")
	}
	if m.Schema < 1 {
		return errors.Wrapf(errors.ErrMetadata, "invalid schema version %d", m.Schema)
	}
	return nil
}
