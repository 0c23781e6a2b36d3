package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
	"github.com/warden-one/warden/x"
	"github.com/warden-one/warden/x/guardian"
	"github.com/warden-one/warden/x/ledger"
	"github.com/warden-one/warden/x/safemode"
	"github.com/tendermint/tendermint/libs/common"
)

// ExecuteHandler applies the effects of an approved request.
// Permissionless: approval is the authorization, whoever submits the
// execution only pays for it.
type ExecuteHandler struct {
	auth     x.Authenticator
	vaults   orm.ModelBucket
	requests orm.ModelBucket
	control  ledger.Controller
	safe     safemode.Controller
}

var _ warden.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	var msg ExecuteMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &warden.CheckResult{GasAllocated: executeCost}, nil
}

func (h ExecuteHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	var msg ExecuteMsg
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

	// The status flip below is written in the same transaction as the
	// effects, so at most one execution can ever succeed.
	if req.Status == RequestExecuted {
		return nil, errors.Wrap(errors.ErrState, "already executed")
	}
	if req.terminal() {
		return nil, errors.Wrapf(errors.ErrState, "request is %s", req.Status)
	}
	if req.overdue(now) {
		return nil, errors.Wrap(errors.ErrExpired, "voting window closed without quorum")
	}

	// Resolve the approval path first: a pending emergency unlock past
	// its fallback delay is approved via timeout atomically with the
	// execution.
	via := req.ApprovedVia
	if req.Status == RequestPending {
		if req.Kind != KindEmergencyUnlock {
			return nil, errors.Wrap(guardian.ErrQuorum, "quorum not reached")
		}
		if now < req.FallbackAt {
			return nil, errors.Wrap(errors.ErrTiming, "fallback delay not reached")
		}
		via = ViaTimeout
	}

	// Safe mode blocks every guardian approved execution. Only an
	// emergency unlock that escaped the quorum path, or a request the
	// owner originated, passes through.
	escapes := req.Kind == KindEmergencyUnlock && (via == ViaOverride || via == ViaTimeout)
	if !escapes && !req.OwnerOriginated {
		enabled, err := h.safe.Enabled(db, req.VaultID)
		if err != nil {
			return nil, err
		}
		if enabled {
			return nil, errors.Wrap(safemode.ErrSafeMode, "vault is in safe mode")
		}
	}

	if req.Status == RequestApproved && req.TimelockDeadline != 0 && now < req.TimelockDeadline {
		return nil, errors.Wrap(errors.ErrTiming, "timelock in effect")
	}

	data, err := h.apply(ctx, db, &req, now)
	if err != nil {
		return nil, err
	}

	req.Status = RequestExecuted
	req.ApprovedVia = via
	req.ExecutedAt = now
	if _, err := h.requests.Put(db, msg.RequestID, &req); err != nil {
		return nil, errors.Wrap(err, "store request")
	}

	return &warden.DeliverResult{
		Data: data,
		Tags: []common.KVPair{
			{Key: []byte("request-id"), Value: []byte(warden.Address(msg.RequestID).String())},
			{Key: []byte("vault-id"), Value: []byte(warden.Address(req.VaultID).String())},
			{Key: []byte("request-status"), Value: []byte(RequestExecuted.String())},
			{Key: []byte("approved-via"), Value: []byte(via.String())},
		},
	}, nil
}

// apply performs the effect of the request. Amounts and ownership are
// re-validated against the current state, not the state at proposal
// time. Any error discards all writes of the attempt.
func (h ExecuteHandler) apply(ctx warden.Context, db warden.KVStore, req *Request, now warden.UnixTime) ([]byte, error) {
	source := VaultCondition(req.VaultID).Address()

	switch req.Kind {
	case KindWithdrawal:
		t := req.Transfer
		if err := h.control.MoveCoins(db, source, t.Destination, *t.Amount); err != nil {
			return nil, errors.Wrap(err, "move coins")
		}
		return nil, nil

	case KindBatchWithdrawal:
		// All or nothing: the first failing item aborts the whole
		// delivery and the savepoint discards the earlier moves.
		res := BatchResult{Items: make([]*Transfer, 0, len(req.Batch.Items))}
		for i, t := range req.Batch.Items {
			if err := h.control.MoveCoins(db, source, t.Destination, *t.Amount); err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			res.Items = append(res.Items, t)
		}
		data, err := res.Marshal()
		if err != nil {
			return nil, errors.Wrap(err, "marshal result")
		}
		return data, nil

	case KindRecovery:
		var v Vault
		if err := h.vaults.One(db, req.VaultID, &v); err != nil {
			return nil, errors.Wrapf(err, "vault %x", req.VaultID)
		}
		if v.Owner.Equals(req.Recovery.NewOwner) {
			return nil, errors.Wrap(errors.ErrState, "recovery to the current owner")
		}
		v.Owner = req.Recovery.NewOwner
		if _, err := h.vaults.Put(db, req.VaultID, &v); err != nil {
			return nil, errors.Wrap(err, "store vault")
		}
		return nil, nil

	case KindEmergencyUnlock:
		actor := req.Source
		if signer := x.MainSigner(ctx, h.auth); signer != nil {
			actor = signer.Address()
		}
		reason := req.Unlock.Comment
		if reason == "" {
			reason = "emergency unlock"
		}
		if err := h.safe.Clear(db, req.VaultID, actor, reason, now); err != nil {
			return nil, errors.Wrap(err, "clear safe mode")
		}
		return nil, nil

	default:
		return nil, errors.Wrapf(errors.ErrState, "unknown kind %d", req.Kind)
	}
}
