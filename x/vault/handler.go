package vault

import (
	"fmt"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/crypto/sigpack"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
	"github.com/warden-one/warden/x"
	"github.com/warden-one/warden/x/crossdomain"
	"github.com/warden-one/warden/x/guardian"
	"github.com/warden-one/warden/x/ledger"
	"github.com/warden-one/warden/x/safemode"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createVaultCost   = 300
	createRequestCost = 200
	voteCost          = 100
	executeCost       = 500
	updateCost        = 100
)

// RegisterRoutes will instantiate and register all handlers in this
// package. The scheduler may be nil, expiry then relies on lazy checks
// alone.
func RegisterRoutes(
	r warden.Registry,
	auth x.Authenticator,
	control ledger.Controller,
	safe safemode.Controller,
	verifier crossdomain.Verifier,
	sched warden.Scheduler,
) {
	r = migration.SchemaMigratingRegistry("vault", r)

	var (
		vaults   = NewVaultBucket()
		requests = NewRequestBucket()
		book     = NewPolicyBook()
		dir      = guardian.NewDirectory()
		ops      = voteOps{votes: NewVoteBucket(), dir: dir}
	)

	r.Handle(&CreateVaultMsg{}, CreateVaultHandler{auth: auth, vaults: vaults, book: book, dir: dir})
	r.Handle(&UpdatePolicyMsg{}, UpdatePolicyHandler{auth: auth, vaults: vaults, book: book, dir: dir})
	r.Handle(&CreateRequestMsg{}, CreateRequestHandler{
		auth: auth, vaults: vaults, requests: requests, book: book, dir: dir, sched: sched,
	})
	r.Handle(&VoteMsg{}, VoteHandler{
		auth: auth, requests: requests, book: book, dir: dir, ops: ops, verifier: verifier,
	})
	r.Handle(&SubmitSignaturesMsg{}, SubmitSignaturesHandler{
		auth: auth, requests: requests, book: book, dir: dir, ops: ops,
	})
	r.Handle(&ExecuteMsg{}, ExecuteHandler{
		auth: auth, vaults: vaults, requests: requests, control: control, safe: safe,
	})
	r.Handle(&CancelMsg{}, CancelHandler{auth: auth, vaults: vaults, requests: requests})
	r.Handle(&ExpireRequestMsg{}, ExpireHandler{requests: requests})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// RegisterQuery registers the vault buckets.
func RegisterQuery(qr warden.QueryRouter) {
	NewVaultBucket().Register("vaults", qr)
	NewPolicyBook().Register("vaults/policies", qr)
	NewRequestBucket().Register("vaults/requests", qr)
	NewVoteBucket().Register("vaults/votes", qr)
}

// NewConfigHandler returns the gconf based configuration update handler
// for this package.
func NewConfigHandler(auth x.Authenticator) warden.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler("vault", &conf, auth, migration.CurrentAdmin)
}

func blockNow(ctx warden.Context) (warden.UnixTime, error) {
	t, err := warden.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	return warden.AsUnixTime(t), nil
}

// validatePolicyRules applies the checks shared by vault creation and
// policy updates: the voting periods must fit the configured bounds
// and no regular quorum may exceed the number of currently active
// regular guardians.
func validatePolicyRules(db warden.KVStore, dir guardian.Directory, rules []*Rule, now warden.UnixTime) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	active, err := dir.ActiveCount(db, guardian.RoleRegular, now)
	if err != nil {
		return errors.Wrap(err, "active count")
	}
	for i, r := range rules {
		if r.VotingPeriod < conf.MinVotingPeriod || r.VotingPeriod > conf.MaxVotingPeriod {
			return errors.Wrapf(errors.ErrInput, "rule %d: voting period out of bounds", i)
		}
		if r.Kind != KindEmergencyUnlock && r.Quorum > active {
			return errors.Wrapf(guardian.ErrQuorum,
				"rule %d: quorum %d exceeds %d active guardians", i, r.Quorum, active)
		}
	}
	return nil
}

// CreateVaultHandler creates a vault owned by the main signer together
// with its first policy version.
type CreateVaultHandler struct {
	auth   x.Authenticator
	vaults orm.ModelBucket
	book   PolicyBook
	dir    guardian.Directory
}

var _ warden.Handler = CreateVaultHandler{}

func (h CreateVaultHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: createVaultCost}, nil
}

func (h CreateVaultHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	if err := validatePolicyRules(db, h.dir, msg.Rules, now); err != nil {
		return nil, err
	}
	owner := x.MainSigner(ctx, h.auth).Address()
	v := Vault{
		Metadata:  &warden.Metadata{Schema: 1},
		Owner:     owner,
		CreatedAt: now,
	}
	vaultID, err := h.vaults.Put(db, nil, &v)
	if err != nil {
		return nil, errors.Wrap(err, "store vault")
	}
	if _, err := h.book.Append(db, vaultID, msg.Rules); err != nil {
		return nil, err
	}
	return &warden.DeliverResult{
		Data: vaultID,
		Tags: []common.KVPair{
			{Key: []byte("vault-id"), Value: []byte(warden.Address(vaultID).String())},
		},
	}, nil
}

func (h CreateVaultHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*CreateVaultMsg, error) {
	var msg CreateVaultMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if x.MainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	return &msg, nil
}

// UpdatePolicyHandler appends a new policy version. Vault owner
// exclusive.
type UpdatePolicyHandler struct {
	auth   x.Authenticator
	vaults orm.ModelBucket
	book   PolicyBook
	dir    guardian.Directory
}

var _ warden.Handler = UpdatePolicyHandler{}

func (h UpdatePolicyHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: updateCost}, nil
}

func (h UpdatePolicyHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	if err := validatePolicyRules(db, h.dir, msg.Rules, now); err != nil {
		return nil, err
	}
	p, err := h.book.Append(db, msg.VaultID, msg.Rules)
	if err != nil {
		return nil, err
	}
	return &warden.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("vault-id"), Value: []byte(warden.Address(msg.VaultID).String())},
			{Key: []byte("policy-version"), Value: []byte(fmt.Sprint(p.Version))},
		},
	}, nil
}

func (h UpdatePolicyHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*UpdatePolicyMsg, error) {
	var msg UpdatePolicyMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var v Vault
	if err := h.vaults.One(db, msg.VaultID, &v); err != nil {
		return nil, errors.Wrapf(err, "vault %x", msg.VaultID)
	}
	if !h.auth.HasAddress(ctx, v.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "vault owner signature required")
	}
	return &msg, nil
}

// CreateRequestHandler proposes authorization requests. The proposer
// must be the vault owner or an active guardian. Payloads are fully
// validated before any write.
type CreateRequestHandler struct {
	auth     x.Authenticator
	vaults   orm.ModelBucket
	requests orm.ModelBucket
	book     PolicyBook
	dir      guardian.Directory
	sched    warden.Scheduler
}

var _ warden.Handler = CreateRequestHandler{}

func (h CreateRequestHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: createRequestCost}, nil
}

func (h CreateRequestHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, vault, rule, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	proposer := x.MainSigner(ctx, h.auth).Address()
	req := Request{
		Metadata:        &warden.Metadata{Schema: 1},
		VaultID:         msg.VaultID,
		Kind:            msg.Kind,
		Transfer:        msg.Transfer,
		Batch:           msg.Batch,
		Recovery:        msg.Recovery,
		Unlock:          msg.Unlock,
		Source:          proposer,
		OwnerOriginated: vault.Owner.Equals(proposer),
		PolicyVersion:   rule.policyVersion,
		CreatedAt:       now,
		VotingDeadline:  now.Add(rule.VotingPeriod.Duration()),
		Status:          RequestPending,
		ApprovedVia:     ViaNone,
	}
	if msg.Kind == KindEmergencyUnlock {
		req.FallbackAt = now.Add(rule.FallbackDelay.Duration())
	}
	requestID, err := h.requests.Put(db, nil, &req)
	if err != nil {
		return nil, errors.Wrap(err, "store request")
	}

	// Schedule the durable expiry sweep. The lazy deadline checks stay
	// authoritative, the task only persists the transition.
	if h.sched != nil && msg.Kind != KindEmergencyUnlock {
		expire := &ExpireRequestMsg{
			Metadata:  &warden.Metadata{Schema: 1},
			RequestID: requestID,
		}
		if _, err := h.sched.Schedule(db, req.VotingDeadline.Time(), nil, expire); err != nil {
			return nil, errors.Wrap(err, "schedule expiry")
		}
	}

	return &warden.DeliverResult{
		Data: requestID,
		Tags: []common.KVPair{
			{Key: []byte("request-id"), Value: []byte(warden.Address(requestID).String())},
			{Key: []byte("vault-id"), Value: []byte(warden.Address(msg.VaultID).String())},
			{Key: []byte("request-kind"), Value: []byte(msg.Kind.String())},
		},
	}, nil
}

// boundRule is a policy rule together with the version it came from.
type boundRule struct {
	*Rule
	policyVersion uint32
}

func (h CreateRequestHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*CreateRequestMsg, *Vault, *boundRule, error) {
	var msg CreateRequestMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	var vault Vault
	if err := h.vaults.One(db, msg.VaultID, &vault); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "vault %x", msg.VaultID)
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	proposer := x.MainSigner(ctx, h.auth)
	if proposer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	if !vault.Owner.Equals(proposer.Address()) {
		active, err := h.dir.IsActive(db, proposer.Address(), now)
		if err != nil {
			return nil, nil, nil, err
		}
		if !active {
			return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized,
				"proposer is neither the vault owner nor an active guardian")
		}
	}
	if msg.Kind == KindBatchWithdrawal {
		conf, err := loadConf(db)
		if err != nil {
			return nil, nil, nil, err
		}
		if uint32(len(msg.Batch.Items)) > conf.MaxBatchItems {
			return nil, nil, nil, errors.Wrapf(errors.ErrInput,
				"batch exceeds %d items", conf.MaxBatchItems)
		}
	}
	if msg.Kind == KindRecovery && vault.Owner.Equals(msg.Recovery.NewOwner) {
		return nil, nil, nil, errors.Wrap(errors.ErrInput, "recovery to the current owner")
	}
	policy, err := h.book.Latest(db, msg.VaultID)
	if err != nil {
		return nil, nil, nil, err
	}
	rule := policy.Rule(msg.Kind)
	if rule == nil {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "no policy rule for %s", msg.Kind)
	}
	return &msg, &vault, &boundRule{Rule: rule, policyVersion: policy.Version}, nil
}

// VoteHandler records guardian approvals and applies the approval
// transition when a quorum is reached.
type VoteHandler struct {
	auth     x.Authenticator
	requests orm.ModelBucket
	book     PolicyBook
	dir      guardian.Directory
	ops      voteOps
	verifier crossdomain.Verifier
}

var _ warden.Handler = VoteHandler{}

func (h VoteHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, err := h.validate(tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: voteCost}, nil
}

func (h VoteHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	var req Request
	if err := h.requests.One(db, msg.RequestID, &req); err != nil {
		return nil, errors.Wrapf(err, "request %x", msg.RequestID)
	}
	if req.terminal() {
		return nil, errors.Wrapf(errors.ErrState, "request is %s", req.Status)
	}
	if req.Status != RequestPending {
		return nil, errors.Wrap(errors.ErrState, "voting is over")
	}
	if req.overdue(now) {
		return nil, errors.Wrap(errors.ErrTiming, "voting window closed")
	}

	voter := x.MainSigner(ctx, h.auth)
	if voter == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	policy, err := h.book.Latest(db, req.VaultID)
	if err != nil {
		return nil, err
	}
	rule := policy.Rule(req.Kind)
	if rule == nil {
		return nil, errors.Wrapf(errors.ErrState, "no policy rule for %s", req.Kind)
	}

	vote := Vote{
		Metadata:  &warden.Metadata{Schema: 1},
		RequestID: msg.RequestID,
		Guardian:  voter.Address(),
		CastAt:    now,
	}
	if msg.Proof == nil {
		active, err := h.dir.IsActive(db, voter.Address(), now)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, errors.Wrap(errors.ErrUnauthorized, "voter is not an active guardian")
		}
		role, err := h.dir.Role(db, voter.Address())
		if err != nil {
			return nil, err
		}
		if role == guardian.RoleEmergency && req.Kind != KindEmergencyUnlock {
			return nil, errors.Wrap(errors.ErrUnauthorized,
				"emergency guardians vote on emergency unlocks only")
		}
		vote.Role = role
		vote.Weight = 1
	} else {
		if rule.RemoteWeight == 0 {
			return nil, errors.Wrap(errors.ErrUnauthorized, "remote votes are not accepted for this kind")
		}
		if err := h.verifier.VerifyMembership(db, voter.Address(), msg.Proof, now); err != nil {
			return nil, err
		}
		vote.Role = guardian.RoleRegular
		vote.Weight = rule.RemoteWeight
		vote.Remote = true
	}

	if err := h.ops.record(db, &vote); err != nil {
		return nil, err
	}
	newly, err := h.ops.evaluate(db, &req, msg.RequestID, rule, now)
	if err != nil {
		return nil, err
	}
	if newly {
		if _, err := h.requests.Put(db, msg.RequestID, &req); err != nil {
			return nil, errors.Wrap(err, "store request")
		}
	}

	tags := []common.KVPair{
		{Key: []byte("request-id"), Value: []byte(warden.Address(msg.RequestID).String())},
	}
	if newly {
		tags = append(tags,
			common.KVPair{Key: []byte("quorum"), Value: []byte("reached")},
			common.KVPair{Key: []byte("approved-via"), Value: []byte(req.ApprovedVia.String())},
		)
	}
	return &warden.DeliverResult{Tags: tags}, nil
}

func (h VoteHandler) validate(tx warden.Tx) (*VoteMsg, error) {
	var msg VoteMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &msg, nil
}

// SubmitSignaturesHandler records one vote per valid signer of a
// packed signature batch. Invalid or duplicate entries are reported in
// the result log and never counted.
type SubmitSignaturesHandler struct {
	auth     x.Authenticator
	requests orm.ModelBucket
	book     PolicyBook
	dir      guardian.Directory
	ops      voteOps
}

var _ warden.Handler = SubmitSignaturesHandler{}

func (h SubmitSignaturesHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	var msg SubmitSignaturesMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &warden.CheckResult{GasAllocated: voteCost * int64(len(msg.Packed)/64)}, nil
}

func (h SubmitSignaturesHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	var msg SubmitSignaturesMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	var req Request
	if err := h.requests.One(db, msg.RequestID, &req); err != nil {
		return nil, errors.Wrapf(err, "request %x", msg.RequestID)
	}
	if req.Status != RequestPending {
		return nil, errors.Wrap(errors.ErrState, "voting is over")
	}
	if req.overdue(now) {
		return nil, errors.Wrap(errors.ErrTiming, "voting window closed")
	}
	policy, err := h.book.Latest(db, req.VaultID)
	if err != nil {
		return nil, err
	}
	rule := policy.Rule(req.Kind)
	if rule == nil {
		return nil, errors.Wrapf(errors.ErrState, "no policy rule for %s", req.Kind)
	}

	digest := ApprovalDigest(warden.GetChainID(ctx), msg.RequestID)
	allowed := func(addr warden.Address) bool {
		active, err := h.dir.IsActive(db, addr, now)
		return err == nil && active
	}
	signers, rejected, err := sigpack.VerifySigners(digest, msg.Packed, allowed)
	if err != nil {
		return nil, err
	}
	if len(signers) == 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no valid guardian signatures")
	}

	var counted, skipped int
	for _, signer := range signers {
		addr := signer.Address()
		role, err := h.dir.Role(db, addr)
		if err != nil {
			return nil, err
		}
		if role == guardian.RoleEmergency && req.Kind != KindEmergencyUnlock {
			skipped++
			continue
		}
		vote := Vote{
			Metadata:  &warden.Metadata{Schema: 1},
			RequestID: msg.RequestID,
			Guardian:  addr,
			Role:      role,
			Weight:    1,
			CastAt:    now,
		}
		switch err := h.ops.record(db, &vote); {
		case err == nil:
			counted++
		case errors.ErrDuplicate.Is(err):
			// Already voted through another channel, never counted
			// twice.
			skipped++
		default:
			return nil, err
		}
	}

	newly, err := h.ops.evaluate(db, &req, msg.RequestID, rule, now)
	if err != nil {
		return nil, err
	}
	if newly {
		if _, err := h.requests.Put(db, msg.RequestID, &req); err != nil {
			return nil, errors.Wrap(err, "store request")
		}
	}

	tags := []common.KVPair{
		{Key: []byte("request-id"), Value: []byte(warden.Address(msg.RequestID).String())},
	}
	if newly {
		tags = append(tags,
			common.KVPair{Key: []byte("quorum"), Value: []byte("reached")},
			common.KVPair{Key: []byte("approved-via"), Value: []byte(req.ApprovedVia.String())},
		)
	}
	return &warden.DeliverResult{
		Log:  fmt.Sprintf("counted %d, skipped %d, rejected %d", counted, skipped, len(rejected)),
		Tags: tags,
	}, nil
}

// CancelHandler withdraws a pending request. Only the proposer or the
// vault owner may cancel, and only before approval.
type CancelHandler struct {
	auth     x.Authenticator
	vaults   orm.ModelBucket
	requests orm.ModelBucket
}

var _ warden.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: updateCost}, nil
}

func (h CancelHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, req, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	req.Status = RequestCancelled
	if _, err := h.requests.Put(db, msg.RequestID, req); err != nil {
		return nil, errors.Wrap(err, "store request")
	}
	return &warden.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("request-id"), Value: []byte(warden.Address(msg.RequestID).String())},
			{Key: []byte("request-status"), Value: []byte(RequestCancelled.String())},
		},
	}, nil
}

func (h CancelHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*CancelMsg, *Request, error) {
	var msg CancelMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	var req Request
	if err := h.requests.One(db, msg.RequestID, &req); err != nil {
		return nil, nil, errors.Wrapf(err, "request %x", msg.RequestID)
	}
	if req.Status != RequestPending {
		return nil, nil, errors.Wrapf(errors.ErrState, "cannot cancel a %s request", req.Status)
	}
	var vault Vault
	if err := h.vaults.One(db, req.VaultID, &vault); err != nil {
		return nil, nil, errors.Wrapf(err, "vault %x", req.VaultID)
	}
	if !h.auth.HasAddress(ctx, req.Source) && !h.auth.HasAddress(ctx, vault.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized,
			"only the proposer or the vault owner may cancel")
	}
	return &msg, &req, nil
}

// ExpireHandler makes the expiry of an overdue pending request
// durable. Permissionless, it cannot expire anything before its
// deadline.
type ExpireHandler struct {
	requests orm.ModelBucket
}

var _ warden.Handler = ExpireHandler{}

func (h ExpireHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: updateCost}, nil
}

func (h ExpireHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, req, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	req.Status = RequestExpired
	if _, err := h.requests.Put(db, msg.RequestID, req); err != nil {
		return nil, errors.Wrap(err, "store request")
	}
	return &warden.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("request-id"), Value: []byte(warden.Address(msg.RequestID).String())},
			{Key: []byte("request-status"), Value: []byte(RequestExpired.String())},
		},
	}, nil
}

func (h ExpireHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*ExpireRequestMsg, *Request, error) {
	var msg ExpireRequestMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	var req Request
	if err := h.requests.One(db, msg.RequestID, &req); err != nil {
		return nil, nil, errors.Wrapf(err, "request %x", msg.RequestID)
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !req.overdue(now) {
		if req.Status != RequestPending {
			return nil, nil, errors.Wrapf(errors.ErrState, "request is %s", req.Status)
		}
		if req.Kind == KindEmergencyUnlock {
			return nil, nil, errors.Wrap(errors.ErrState, "emergency unlocks do not expire")
		}
		return nil, nil, errors.Wrap(errors.ErrTiming, "voting window still open")
	}
	return &msg, &req, nil
}
