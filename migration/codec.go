package migration

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
)

// Schema declares the schema version of a single package. For each package
// one entity per version is stored, so the entity with the highest version
// number represents the currently active schema.
type Schema struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Pkg holds the name of the package that this schema version is
	// declared for.
	Pkg string `json:"pkg"`
	// Version holds the highest supported schema version.
	Version uint32 `json:"version"`
}

func (s *Schema) GetMetadata() *warden.Metadata {
	return s.Metadata
}

func (s *Schema) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Schema) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, s)
}

// Configuration is the migration extension configuration. It is stored as a
// gconf managed singleton and initialized from the genesis.
type Configuration struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Admin holds the address of the only signature that is authorized to
	// upgrade schema versions.
	Admin warden.Address `json:"admin"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Configuration) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, c)
}

// UpgradeSchemaMsg is a request to activate the next schema version of a
// given package.
type UpgradeSchemaMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Pkg holds the name of the package that the schema upgrade is
	// requested for.
	Pkg string `json:"pkg"`
	// ToVersion is the schema version that the requester wants to be
	// active after this message is processed.
	ToVersion uint32 `json:"to_version"`
}

func (msg *UpgradeSchemaMsg) GetMetadata() *warden.Metadata {
	return msg.Metadata
}

func (msg *UpgradeSchemaMsg) Marshal() ([]byte, error) {
	return codec.Marshal(msg)
}

func (msg *UpgradeSchemaMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, msg)
}
