package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
)

func init() {
	migration.MustRegister(1, &Vault{}, migration.NoModification)
	migration.MustRegister(1, &Policy{}, migration.NoModification)
	migration.MustRegister(1, &Request{}, migration.NoModification)
	migration.MustRegister(1, &Vote{}, migration.NoModification)
}

// VaultCondition derives the condition owning a vault's funds. The
// ledger account of a vault lives under its address.
func VaultCondition(vaultID []byte) warden.Condition {
	return warden.NewCondition("vault", "seq", vaultID)
}

var _ orm.CloneableData = (*Vault)(nil)

func (v *Vault) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", v.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", v.Owner.Validate())
	if v.CreatedAt == 0 {
		errs = errors.Append(errs,
			errors.Field("CreatedAt", errors.ErrEmpty, "creation time is required"))
	}
	return errs
}

func (v *Vault) Copy() orm.CloneableData {
	cpy := *v
	cpy.Metadata = v.Metadata.Copy()
	cpy.Owner = append(warden.Address(nil), v.Owner...)
	return &cpy
}

func (r *Rule) Validate() error {
	switch r.Kind {
	case KindWithdrawal, KindBatchWithdrawal, KindRecovery, KindEmergencyUnlock:
	default:
		return errors.Wrap(errors.ErrInput, "invalid kind")
	}
	if r.Quorum == 0 {
		return errors.Wrap(errors.ErrInput, "quorum must be at least 1")
	}
	if r.VotingPeriod <= 0 {
		return errors.Wrap(errors.ErrInput, "voting period must be positive")
	}
	if r.CoolingPeriod < 0 {
		return errors.Wrap(errors.ErrInput, "cooling period must not be negative")
	}
	if r.Kind == KindEmergencyUnlock {
		if r.OverrideQuorum == 0 {
			return errors.Wrap(errors.ErrInput, "emergency unlock requires an override quorum")
		}
		if r.FallbackDelay <= 0 {
			return errors.Wrap(errors.ErrInput, "emergency unlock requires a fallback delay")
		}
	} else {
		if r.OverrideQuorum != 0 {
			return errors.Wrap(errors.ErrInput, "override quorum is emergency unlock only")
		}
		if r.FallbackDelay != 0 {
			return errors.Wrap(errors.ErrInput, "fallback delay is emergency unlock only")
		}
	}
	return nil
}

var _ orm.CloneableData = (*Policy)(nil)

func (p *Policy) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", p.Metadata.Validate())
	if len(p.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	if p.Version == 0 {
		errs = errors.Append(errs,
			errors.Field("Version", errors.ErrInput, "versions start at 1"))
	}
	if len(p.Rules) == 0 {
		errs = errors.Append(errs,
			errors.Field("Rules", errors.ErrEmpty, "at least one rule required"))
	}
	seen := make(map[Kind]bool, len(p.Rules))
	for _, r := range p.Rules {
		if r == nil {
			errs = errors.Append(errs,
				errors.Field("Rules", errors.ErrEmpty, "nil rule"))
			continue
		}
		if seen[r.Kind] {
			errs = errors.Append(errs,
				errors.Field("Rules", errors.ErrDuplicate, "one rule per kind"))
		}
		seen[r.Kind] = true
		errs = errors.AppendField(errs, "Rules", r.Validate())
	}
	return errs
}

func (p *Policy) Copy() orm.CloneableData {
	cpy := *p
	cpy.Metadata = p.Metadata.Copy()
	cpy.VaultID = append([]byte(nil), p.VaultID...)
	cpy.Rules = make([]*Rule, len(p.Rules))
	for i, r := range p.Rules {
		if r != nil {
			rc := *r
			cpy.Rules[i] = &rc
		}
	}
	return &cpy
}

// Rule returns the rule for the given kind, or nil.
func (p *Policy) Rule(kind Kind) *Rule {
	for _, r := range p.Rules {
		if r != nil && r.Kind == kind {
			return r
		}
	}
	return nil
}

func (t *Transfer) Validate() error {
	if t == nil {
		return errors.Wrap(errors.ErrEmpty, "transfer is required")
	}
	var errs error
	errs = errors.AppendField(errs, "Destination", t.Destination.Validate())
	if coin.IsEmpty(t.Amount) || !t.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", t.Amount.Validate())
	}
	return errs
}

var _ orm.CloneableData = (*Request)(nil)

func (r *Request) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	if len(r.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	errs = errors.AppendField(errs, "Source", r.Source.Validate())
	if r.CreatedAt == 0 {
		errs = errors.Append(errs,
			errors.Field("CreatedAt", errors.ErrEmpty, "creation time is required"))
	}
	if r.VotingDeadline <= r.CreatedAt {
		errs = errors.Append(errs,
			errors.Field("VotingDeadline", errors.ErrInput, "must follow creation"))
	}
	if r.TimelockDeadline != 0 && r.TimelockDeadline <= r.VotingDeadline {
		errs = errors.Append(errs,
			errors.Field("TimelockDeadline", errors.ErrInput, "must follow the voting deadline"))
	}
	switch r.Status {
	case RequestPending, RequestApproved, RequestExecuted,
		RequestRejected, RequestExpired, RequestCancelled:
	default:
		errs = errors.Append(errs,
			errors.Field("Status", errors.ErrModel, "invalid status"))
	}
	errs = errors.AppendField(errs, "Payload", r.validatePayload())
	return errs
}

// validatePayload ensures exactly one payload pointer is set and that
// it matches the kind.
func (r *Request) validatePayload() error {
	var set int
	for _, p := range []bool{r.Transfer != nil, r.Batch != nil, r.Recovery != nil, r.Unlock != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return errors.Wrapf(errors.ErrInput, "exactly one payload required, got %d", set)
	}
	switch r.Kind {
	case KindWithdrawal:
		if r.Transfer == nil {
			return errors.Wrap(errors.ErrInput, "withdrawal requires a transfer payload")
		}
		return r.Transfer.Validate()
	case KindBatchWithdrawal:
		if r.Batch == nil {
			return errors.Wrap(errors.ErrInput, "batch withdrawal requires a batch payload")
		}
		if len(r.Batch.Items) == 0 {
			return errors.Wrap(errors.ErrEmpty, "empty batch")
		}
		for i, item := range r.Batch.Items {
			if err := item.Validate(); err != nil {
				return errors.Wrapf(err, "item %d", i)
			}
		}
		return nil
	case KindRecovery:
		if r.Recovery == nil {
			return errors.Wrap(errors.ErrInput, "recovery requires a recovery payload")
		}
		return errors.Wrap(r.Recovery.NewOwner.Validate(), "new owner")
	case KindEmergencyUnlock:
		if r.Unlock == nil {
			return errors.Wrap(errors.ErrInput, "emergency unlock requires an unlock payload")
		}
		return nil
	default:
		return errors.Wrap(errors.ErrInput, "invalid kind")
	}
}

func (r *Request) Copy() orm.CloneableData {
	cpy := *r
	cpy.Metadata = r.Metadata.Copy()
	cpy.VaultID = append([]byte(nil), r.VaultID...)
	cpy.Source = append(warden.Address(nil), r.Source...)
	if r.Transfer != nil {
		t := *r.Transfer
		cpy.Transfer = &t
	}
	if r.Batch != nil {
		b := BatchTransfer{Items: make([]*Transfer, len(r.Batch.Items))}
		for i, item := range r.Batch.Items {
			if item != nil {
				ic := *item
				b.Items[i] = &ic
			}
		}
		cpy.Batch = &b
	}
	if r.Recovery != nil {
		rc := *r.Recovery
		cpy.Recovery = &rc
	}
	if r.Unlock != nil {
		u := *r.Unlock
		cpy.Unlock = &u
	}
	return &cpy
}

// terminal returns true once the request can never change again.
func (r *Request) terminal() bool {
	switch r.Status {
	case RequestExecuted, RequestRejected, RequestExpired, RequestCancelled:
		return true
	}
	return false
}

// overdue returns true for a pending request whose voting window
// closed without quorum. Emergency unlocks never expire, the timeout
// fallback keeps them executable.
func (r *Request) overdue(now warden.UnixTime) bool {
	return r.Status == RequestPending &&
		r.Kind != KindEmergencyUnlock &&
		now > r.VotingDeadline
}

var _ orm.CloneableData = (*Vote)(nil)

func (v *Vote) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", v.Metadata.Validate())
	if len(v.RequestID) != 8 {
		errs = errors.Append(errs,
			errors.Field("RequestID", errors.ErrInput, "8 bytes required"))
	}
	errs = errors.AppendField(errs, "Guardian", v.Guardian.Validate())
	if v.Weight == 0 {
		errs = errors.Append(errs,
			errors.Field("Weight", errors.ErrInput, "must be at least 1"))
	}
	if v.CastAt == 0 {
		errs = errors.Append(errs,
			errors.Field("CastAt", errors.ErrEmpty, "cast time is required"))
	}
	return errs
}

func (v *Vote) Copy() orm.CloneableData {
	cpy := *v
	cpy.Metadata = v.Metadata.Copy()
	cpy.RequestID = append([]byte(nil), v.RequestID...)
	cpy.Guardian = append(warden.Address(nil), v.Guardian...)
	return &cpy
}

// NewVaultBucket returns a bucket for vaults with sequence generated
// 8 byte IDs.
func NewVaultBucket() orm.ModelBucket {
	b := orm.NewModelBucket("vlt", &Vault{},
		orm.WithIDSequence(orm.NewSequence("vault", "id")),
	)
	return migration.NewModelBucket("vault", b)
}

// NewRequestBucket returns a bucket for requests with sequence
// generated 8 byte IDs, indexed by vault.
func NewRequestBucket() orm.ModelBucket {
	b := orm.NewModelBucket("req", &Request{},
		orm.WithIDSequence(orm.NewSequence("request", "id")),
		orm.WithIndex("vault", requestVaultIndexer, false),
	)
	return migration.NewModelBucket("vault", b)
}

// NewVoteBucket returns a bucket for votes, keyed by the request ID
// followed by the guardian address and indexed by request.
func NewVoteBucket() orm.ModelBucket {
	b := orm.NewModelBucket("vote", &Vote{},
		orm.WithIndex("request", voteRequestIndexer, false),
	)
	return migration.NewModelBucket("vault", b)
}

func voteKey(requestID []byte, guardian warden.Address) []byte {
	key := make([]byte, 0, len(requestID)+len(guardian))
	key = append(key, requestID...)
	return append(key, guardian...)
}

func policyVaultIndexer(obj orm.Object) ([]byte, error) {
	p, err := asPolicy(obj)
	if err != nil {
		return nil, err
	}
	return p.VaultID, nil
}

func requestVaultIndexer(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot index nil object")
	}
	r, ok := obj.Value().(*Request)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "can only index requests")
	}
	return r.VaultID, nil
}

func voteRequestIndexer(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot index nil object")
	}
	v, ok := obj.Value().(*Vote)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "can only index votes")
	}
	return v.RequestID, nil
}

func asPolicy(obj orm.Object) (*Policy, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot index nil object")
	}
	p, ok := obj.Value().(*Policy)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "can only index policies")
	}
	return p, nil
}
