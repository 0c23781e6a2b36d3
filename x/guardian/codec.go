package guardian

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
)

// Role decides which quorum a guardian vote counts toward.
type Role int32

const (
	RoleInvalid Role = 0
	// RoleRegular guardians vote toward the regular approval quorum.
	RoleRegular Role = 1
	// RoleEmergency guardians form the disjoint set that can fast-path
	// an emergency unlock via the override quorum.
	RoleEmergency Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "regular"
	case RoleEmergency:
		return "emergency"
	default:
		return "invalid"
	}
}

// Status is the persisted guardian state. Only terminal transitions are
// written. A live record stays pending in storage and its effective
// status is computed from the clock, see Directory.
type Status int32

const (
	StatusInvalid Status = 0
	StatusPending Status = 1
	StatusActive  Status = 2
	StatusExpired Status = 3
	StatusRevoked Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusRevoked:
		return "revoked"
	default:
		return "invalid"
	}
}

// Guardian is a single membership record, stored under the guardian
// address. Records are never deleted, terminal transitions only flip
// the status so the history stays readable.
type Guardian struct {
	Metadata *warden.Metadata `json:"metadata"`
	Address  warden.Address   `json:"address"`
	Role     Role             `json:"role"`
	Status   Status           `json:"status"`
	// RegisteredAt is the block time of the registration.
	RegisteredAt warden.UnixTime `json:"registered_at"`
	// ActivatedAt is the moment the activation delay matures. Votes
	// cast before this time never count.
	ActivatedAt warden.UnixTime `json:"activated_at"`
	// ExpiresAt is an optional expiration moment. Zero means the
	// membership does not expire.
	ExpiresAt warden.UnixTime `json:"expires_at,omitempty"`
}

func (g *Guardian) GetMetadata() *warden.Metadata {
	return g.Metadata
}

func (g *Guardian) Marshal() ([]byte, error) {
	return codec.Marshal(g)
}

func (g *Guardian) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, g)
}

// RegisterGuardianMsg adds a new guardian to the directory. The record
// matures only after the activation delay.
type RegisterGuardianMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	Address  warden.Address   `json:"address"`
	Role     Role             `json:"role"`
	// ActivationDelay is how long the new guardian must wait before
	// its votes count. It must not be below the configured minimum.
	ActivationDelay warden.UnixDuration `json:"activation_delay"`
	// ExpiresIn optionally limits the membership lifetime, measured
	// from the registration time. Zero means no expiration.
	ExpiresIn warden.UnixDuration `json:"expires_in,omitempty"`
}

func (m *RegisterGuardianMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *RegisterGuardianMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *RegisterGuardianMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}

// RevokeGuardianMsg terminates a membership immediately.
type RevokeGuardianMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	Address  warden.Address   `json:"address"`
}

func (m *RevokeGuardianMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *RevokeGuardianMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *RevokeGuardianMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}

// ExpireGuardianMsg persists the expiration of a matured membership.
// Expiry is observed lazily regardless, this message only makes the
// transition durable. Anyone can send it.
type ExpireGuardianMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	Address  warden.Address   `json:"address"`
}

func (m *ExpireGuardianMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *ExpireGuardianMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ExpireGuardianMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}

// Configuration is the gconf managed state of this extension.
type Configuration struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Owner is the address allowed to manage the directory and to
	// update this configuration.
	Owner warden.Address `json:"owner"`
	// MinActivationDelay is the lowest activation delay a
	// registration may request.
	MinActivationDelay warden.UnixDuration `json:"min_activation_delay"`
}

func (c *Configuration) GetMetadata() *warden.Metadata {
	return c.Metadata
}

func (c *Configuration) GetOwner() warden.Address {
	return c.Owner
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Configuration) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, c)
}

// UpdateConfigurationMsg updates the configuration. Only non-zero
// fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	Patch    *Configuration   `json:"patch"`
}

func (m *UpdateConfigurationMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}
