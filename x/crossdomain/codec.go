package crossdomain

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
)

// MessageStatus is the lifecycle state of an inbound cross-domain
// message.
type MessageStatus int32

const (
	MessageInvalid MessageStatus = 0
	// MessagePending is a message known but not yet acknowledged by
	// any relayer. Because a record is only created by the first
	// relayer delivery, this state is never persisted.
	MessagePending MessageStatus = 1
	// MessageConfirmed has at least one relayer acknowledgement.
	MessageConfirmed MessageStatus = 2
	// MessageVerified reached the relayer quorum.
	MessageVerified MessageStatus = 3
	// MessageExecuted had its payload applied.
	MessageExecuted MessageStatus = 4
	// MessageFailed timed out before reaching the relayer quorum.
	MessageFailed MessageStatus = 5
)

func (s MessageStatus) String() string {
	switch s {
	case MessagePending:
		return "pending"
	case MessageConfirmed:
		return "confirmed"
	case MessageVerified:
		return "verified"
	case MessageExecuted:
		return "executed"
	case MessageFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// SnapshotPayload is the content of a snapshot message: the membership
// root a domain published, together with the moment it was observed.
type SnapshotPayload struct {
	DomainID  string          `json:"domain_id"`
	Root      []byte          `json:"root"`
	LeafCount uint64          `json:"leaf_count"`
	ObservedAt warden.UnixTime `json:"observed_at"`
}

// Snapshot is the currently trusted membership root of a single remote
// domain, stored under the domain ID.
type Snapshot struct {
	Metadata   *warden.Metadata `json:"metadata"`
	DomainID   string           `json:"domain_id"`
	Root       []byte           `json:"root"`
	LeafCount  uint64           `json:"leaf_count"`
	// ObservedAt is when the source domain produced this root. The
	// freshness bound is measured against it.
	ObservedAt warden.UnixTime `json:"observed_at"`
	// TrustedAt is when the relayer quorum was reached here.
	TrustedAt warden.UnixTime `json:"trusted_at"`
}

func (s *Snapshot) GetMetadata() *warden.Metadata {
	return s.Metadata
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Snapshot) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, s)
}

// Message is the record of an inbound cross-domain message, stored
// under the message ID.
type Message struct {
	Metadata          *warden.Metadata `json:"metadata"`
	MessageID         []byte           `json:"message_id"`
	SourceDomain      string           `json:"source_domain"`
	DestinationDomain string           `json:"destination_domain"`
	Payload           *SnapshotPayload `json:"payload"`
	Status            MessageStatus    `json:"status"`
	// Relayers is the set of relayer addresses that confirmed this
	// message. Authoritative for the quorum, a count is never stored.
	Relayers  []warden.Address `json:"relayers"`
	CreatedAt warden.UnixTime  `json:"created_at"`
}

func (m *Message) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *Message) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *Message) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}

// MembershipProof is an RFC 6962 inclusion proof of a guardian address
// in a remote domain's membership snapshot. It travels inside vote
// messages and is never persisted.
type MembershipProof struct {
	DomainID  string   `json:"domain_id"`
	Root      []byte   `json:"root"`
	Leaf      []byte   `json:"leaf"`
	LeafIndex uint64   `json:"leaf_index"`
	LeafCount uint64   `json:"leaf_count"`
	Path      [][]byte `json:"path"`
	// SnapshotAt must match the ObservedAt of the trusted snapshot
	// the proof was built against.
	SnapshotAt warden.UnixTime `json:"snapshot_at"`
}

// RelayMessageMsg is a relayer acknowledgement of a cross-domain
// message.
type RelayMessageMsg struct {
	Metadata     *warden.Metadata `json:"metadata"`
	MessageID    []byte           `json:"message_id"`
	SourceDomain string           `json:"source_domain"`
	Payload      *SnapshotPayload `json:"payload"`
}

func (m *RelayMessageMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *RelayMessageMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *RelayMessageMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}

// Configuration is the gconf managed state of this extension.
type Configuration struct {
	Metadata *warden.Metadata `json:"metadata"`
	Owner    warden.Address   `json:"owner"`
	// Relayers are the addresses allowed to deliver cross-domain
	// messages.
	Relayers []warden.Address `json:"relayers"`
	// RelayerQuorum is how many distinct relayers must confirm a
	// message before its payload is applied.
	RelayerQuorum uint32 `json:"relayer_quorum"`
	// FreshnessBound is the maximum age of a trusted snapshot for
	// membership proofs verified against it.
	FreshnessBound warden.UnixDuration `json:"freshness_bound"`
	// MessageTimeout is how long a message may wait for its relayer
	// quorum before it is observed failed.
	MessageTimeout warden.UnixDuration `json:"message_timeout"`
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
