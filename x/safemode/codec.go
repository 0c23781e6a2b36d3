package safemode

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
)

// Status is the current safe mode flag of a single vault, stored under
// the vault ID.
type Status struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	Enabled  bool             `json:"enabled"`
	// Reason is the operator supplied explanation of the last toggle.
	Reason string          `json:"reason"`
	Since  warden.UnixTime `json:"since"`
}

func (s *Status) GetMetadata() *warden.Metadata {
	return s.Metadata
}

func (s *Status) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Status) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, s)
}

// ToggleRecord is a single entry of the append-only toggle history,
// stored under the vault ID followed by the toggle sequence number.
type ToggleRecord struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	// Seq is the global toggle counter value, unique and increasing
	// across all vaults.
	Seq     uint64          `json:"seq"`
	Enabled bool            `json:"enabled"`
	Reason  string          `json:"reason"`
	Actor   warden.Address  `json:"actor"`
	At      warden.UnixTime `json:"at"`
}

func (r *ToggleRecord) GetMetadata() *warden.Metadata {
	return r.Metadata
}

func (r *ToggleRecord) Marshal() ([]byte, error) {
	return codec.Marshal(r)
}

func (r *ToggleRecord) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, r)
}

// ToggleMsg flips the safe mode flag of a vault. Vault owner exclusive.
type ToggleMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	Enabled  bool             `json:"enabled"`
	Reason   string           `json:"reason"`
}

func (m *ToggleMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *ToggleMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ToggleMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}
