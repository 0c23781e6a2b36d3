package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/x/crossdomain"
	"github.com/warden-one/warden/x/guardian"
)

// Kind tags the request payload variant.
type Kind int32

const (
	KindInvalid         Kind = 0
	KindWithdrawal      Kind = 1
	KindBatchWithdrawal Kind = 2
	KindRecovery        Kind = 3
	KindEmergencyUnlock Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindWithdrawal:
		return "withdrawal"
	case KindBatchWithdrawal:
		return "batch_withdrawal"
	case KindRecovery:
		return "recovery"
	case KindEmergencyUnlock:
		return "emergency_unlock"
	default:
		return "invalid"
	}
}

// RequestStatus is the lifecycle state of an authorization request.
// Executed, rejected, expired and cancelled are terminal.
type RequestStatus int32

const (
	RequestInvalid   RequestStatus = 0
	RequestPending   RequestStatus = 1
	RequestApproved  RequestStatus = 2
	RequestExecuted  RequestStatus = 3
	RequestRejected  RequestStatus = 4
	RequestExpired   RequestStatus = 5
	RequestCancelled RequestStatus = 6
)

func (s RequestStatus) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestApproved:
		return "approved"
	case RequestExecuted:
		return "executed"
	case RequestRejected:
		return "rejected"
	case RequestExpired:
		return "expired"
	case RequestCancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}

// ApprovedVia records which authority approved a request.
type ApprovedVia int32

const (
	ViaNone ApprovedVia = 0
	// ViaQuorum is the regular guardian quorum.
	ViaQuorum ApprovedVia = 1
	// ViaOverride is the emergency-guardian override quorum.
	ViaOverride ApprovedVia = 2
	// ViaTimeout is the unconditional fallback of an emergency unlock.
	ViaTimeout ApprovedVia = 3
)

func (v ApprovedVia) String() string {
	switch v {
	case ViaQuorum:
		return "quorum"
	case ViaOverride:
		return "override"
	case ViaTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Vault is the asset custody entity whose sensitive operations this
// extension gates. Funds live under the vault condition address, see
// VaultCondition.
type Vault struct {
	Metadata  *warden.Metadata `json:"metadata"`
	Owner     warden.Address   `json:"owner"`
	CreatedAt warden.UnixTime  `json:"created_at"`
}

func (v *Vault) GetMetadata() *warden.Metadata {
	return v.Metadata
}

func (v *Vault) Marshal() ([]byte, error) {
	return codec.Marshal(v)
}

func (v *Vault) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, v)
}

// Rule is the quorum and timing policy for one request kind.
type Rule struct {
	Kind Kind `json:"kind"`
	// Quorum is the weighted sum of regular guardian votes required
	// for approval.
	Quorum uint32 `json:"quorum"`
	// RemoteWeight is the weight of a vote backed by a cross-domain
	// membership proof. Zero forbids remote votes for this kind.
	RemoteWeight uint32 `json:"remote_weight,omitempty"`
	// VotingPeriod is how long the voting window stays open.
	VotingPeriod warden.UnixDuration `json:"voting_period"`
	// CoolingPeriod, when set, delays execution after a regular
	// quorum approval.
	CoolingPeriod warden.UnixDuration `json:"cooling_period,omitempty"`
	// OverrideQuorum is the emergency-guardian quorum that approves
	// an emergency unlock with no cooling period. Emergency unlock
	// rules must set it.
	OverrideQuorum uint32 `json:"override_quorum,omitempty"`
	// FallbackDelay is how long after creation an emergency unlock
	// becomes executable unconditionally. Emergency unlock rules must
	// set it.
	FallbackDelay warden.UnixDuration `json:"fallback_delay,omitempty"`
}

// Policy is one version of a vault's rule set, stored under the vault
// ID followed by the big endian version. Versions are append only,
// the one with the highest version number is in effect.
type Policy struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	Version  uint32           `json:"version"`
	Rules    []*Rule          `json:"rules"`
}

func (p *Policy) GetMetadata() *warden.Metadata {
	return p.Metadata
}

func (p *Policy) Marshal() ([]byte, error) {
	return codec.Marshal(p)
}

func (p *Policy) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, p)
}

func (p *Policy) GetVersion() uint32 {
	return p.Version
}

func (p *Policy) SetVersion(v uint32) {
	p.Version = v
}

// Transfer is a single fund movement out of the vault.
type Transfer struct {
	Destination warden.Address `json:"destination"`
	Amount      *coin.Coin     `json:"amount"`
}

// BatchTransfer is an atomic set of transfers: either every item is
// applied or none is.
type BatchTransfer struct {
	Items []*Transfer `json:"items"`
}

// Recovery replaces the vault owner.
type Recovery struct {
	NewOwner warden.Address `json:"new_owner"`
}

// Unlock clears safe mode on the vault.
type Unlock struct {
	Comment string `json:"comment,omitempty"`
}

// Request is an authorization request. Exactly one payload pointer
// matching the kind must be set.
type Request struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	Kind     Kind             `json:"kind"`

	Transfer *Transfer      `json:"transfer,omitempty"`
	Batch    *BatchTransfer `json:"batch,omitempty"`
	Recovery *Recovery      `json:"recovery,omitempty"`
	Unlock   *Unlock        `json:"unlock,omitempty"`

	// Source is the proposer address.
	Source warden.Address `json:"source"`
	// OwnerOriginated marks requests proposed by the vault owner.
	// Safe mode blocks everything else.
	OwnerOriginated bool `json:"owner_originated"`
	// PolicyVersion is the policy version in effect at creation,
	// recorded for audit. Thresholds are read live at decision time.
	PolicyVersion  uint32          `json:"policy_version"`
	CreatedAt      warden.UnixTime `json:"created_at"`
	VotingDeadline warden.UnixTime `json:"voting_deadline"`
	// TimelockDeadline is set on approval when the rule demands a
	// cooling period.
	TimelockDeadline warden.UnixTime `json:"timelock_deadline,omitempty"`
	// FallbackAt is when an emergency unlock becomes executable
	// unconditionally.
	FallbackAt  warden.UnixTime `json:"fallback_at,omitempty"`
	Status      RequestStatus   `json:"status"`
	ApprovedVia ApprovedVia     `json:"approved_via"`
	ExecutedAt  warden.UnixTime `json:"executed_at,omitempty"`
}

func (r *Request) GetMetadata() *warden.Metadata {
	return r.Metadata
}

func (r *Request) Marshal() ([]byte, error) {
	return codec.Marshal(r)
}

func (r *Request) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, r)
}

// Vote is a single guardian approval, stored under the request ID
// followed by the guardian address. This set is the authoritative
// approval record, counts are always derived from it.
type Vote struct {
	Metadata  *warden.Metadata `json:"metadata"`
	RequestID []byte           `json:"request_id"`
	Guardian  warden.Address   `json:"guardian"`
	Role      guardian.Role    `json:"role"`
	// Weight is fixed at cast time. Local votes weigh 1, proof backed
	// votes weigh the rule's remote weight.
	Weight uint32 `json:"weight"`
	// Remote marks votes backed by a cross-domain membership proof.
	// Remote voters are not re-checked against the local directory.
	Remote bool            `json:"remote"`
	CastAt warden.UnixTime `json:"cast_at"`
}

func (v *Vote) GetMetadata() *warden.Metadata {
	return v.Metadata
}

func (v *Vote) Marshal() ([]byte, error) {
	return codec.Marshal(v)
}

func (v *Vote) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, v)
}

// CreateVaultMsg creates a vault owned by the main signer, with policy
// version 1.
type CreateVaultMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	Rules    []*Rule          `json:"rules"`
}

func (m *CreateVaultMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *CreateVaultMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *CreateVaultMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// UpdatePolicyMsg appends a new policy version. Prior versions are
// never mutated.
type UpdatePolicyMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	Rules    []*Rule          `json:"rules"`
}

func (m *UpdatePolicyMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *UpdatePolicyMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *UpdatePolicyMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// CreateRequestMsg proposes an authorization request. Exactly one
// payload pointer matching the kind must be set.
type CreateRequestMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	VaultID  []byte           `json:"vault_id"`
	Kind     Kind             `json:"kind"`

	Transfer *Transfer      `json:"transfer,omitempty"`
	Batch    *BatchTransfer `json:"batch,omitempty"`
	Recovery *Recovery      `json:"recovery,omitempty"`
	Unlock   *Unlock        `json:"unlock,omitempty"`
}

func (m *CreateRequestMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *CreateRequestMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *CreateRequestMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// VoteMsg casts a guardian approval. With a proof attached the vote is
// a cross-domain one and counts at the rule's remote weight.
type VoteMsg struct {
	Metadata  *warden.Metadata             `json:"metadata"`
	RequestID []byte                       `json:"request_id"`
	Proof     *crossdomain.MembershipProof `json:"proof,omitempty"`
}

func (m *VoteMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *VoteMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *VoteMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// SubmitSignaturesMsg records one vote per valid signer of a packed
// signature batch over the request's approval digest.
type SubmitSignaturesMsg struct {
	Metadata  *warden.Metadata `json:"metadata"`
	RequestID []byte           `json:"request_id"`
	// Packed is a sigpack encoded batch, 64 bytes per signature.
	Packed []byte `json:"packed"`
}

func (m *SubmitSignaturesMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *SubmitSignaturesMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *SubmitSignaturesMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// ExecuteMsg applies an approved request. Anyone may send it, approval
// and timing decide.
type ExecuteMsg struct {
	Metadata  *warden.Metadata `json:"metadata"`
	RequestID []byte           `json:"request_id"`
}

func (m *ExecuteMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *ExecuteMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *ExecuteMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// CancelMsg withdraws a pending request. Only the proposer or the
// vault owner may cancel, and only before approval.
type CancelMsg struct {
	Metadata  *warden.Metadata `json:"metadata"`
	RequestID []byte           `json:"request_id"`
}

func (m *CancelMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *CancelMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *CancelMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// ExpireRequestMsg makes the expiry of an overdue pending request
// durable. Scheduled by the cron sweep and permissionless, the lazy
// deadline checks stay authoritative.
type ExpireRequestMsg struct {
	Metadata  *warden.Metadata `json:"metadata"`
	RequestID []byte           `json:"request_id"`
}

func (m *ExpireRequestMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *ExpireRequestMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *ExpireRequestMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// Configuration is the gconf managed state of this extension.
type Configuration struct {
	Metadata *warden.Metadata `json:"metadata"`
	Owner    warden.Address   `json:"owner"`
	// MaxBatchItems bounds the size of a batch withdrawal.
	MaxBatchItems uint32 `json:"max_batch_items"`
	// MinVotingPeriod and MaxVotingPeriod bound the voting period of
	// every policy rule.
	MinVotingPeriod warden.UnixDuration `json:"min_voting_period"`
	MaxVotingPeriod warden.UnixDuration `json:"max_voting_period"`
}

func (c *Configuration) GetMetadata() *warden.Metadata { return c.Metadata }
func (c *Configuration) GetOwner() warden.Address      { return c.Owner }
func (c *Configuration) Marshal() ([]byte, error)      { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(data []byte) error   { return codec.Unmarshal(data, c) }

// UpdateConfigurationMsg updates the configuration. Only non-zero
// fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	Patch    *Configuration   `json:"patch"`
}

func (m *UpdateConfigurationMsg) GetMetadata() *warden.Metadata { return m.Metadata }
func (m *UpdateConfigurationMsg) Marshal() ([]byte, error)      { return codec.Marshal(m) }
func (m *UpdateConfigurationMsg) Unmarshal(data []byte) error   { return codec.Unmarshal(data, m) }

// BatchResult is the amino encoded content of the DeliverResult data
// of an executed batch withdrawal, one entry per applied item.
type BatchResult struct {
	Items []*Transfer `json:"items"`
}

func (r *BatchResult) Marshal() ([]byte, error)    { return codec.Marshal(r) }
func (r *BatchResult) Unmarshal(data []byte) error { return codec.Unmarshal(data, r) }
