package safemode

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/x"
	"github.com/tendermint/tendermint/libs/common"
)

const toggleCost = 50

// OwnerLookup resolves the owner of a vault. Implemented by the vault
// extension and wired during application construction, so this package
// does not depend on the vault package.
type OwnerLookup interface {
	VaultOwner(db warden.ReadOnlyKVStore, vaultID []byte) (warden.Address, error)
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r warden.Registry, auth x.Authenticator, owners OwnerLookup) {
	r = migration.SchemaMigratingRegistry("safemode", r)
	r.Handle(&ToggleMsg{}, ToggleHandler{auth: auth, owners: owners, control: NewController()})
}

// RegisterQuery registers the safe mode buckets under /safemode.
func RegisterQuery(qr warden.QueryRouter) {
	NewStatusBucket().Register("safemode", qr)
	NewHistoryBucket().Register("safemode/history", qr)
}

// ToggleHandler flips the safe mode flag of a vault. Only the vault
// owner is authorized.
type ToggleHandler struct {
	auth    x.Authenticator
	owners  OwnerLookup
	control *BaseController
}

var _ warden.Handler = ToggleHandler{}

func (h ToggleHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: toggleCost}, nil
}

func (h ToggleHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := warden.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	actor := x.MainSigner(ctx, h.auth).Address()
	if err := h.control.Toggle(db, msg.VaultID, msg.Enabled, actor, msg.Reason, warden.AsUnixTime(now)); err != nil {
		return nil, err
	}
	return &warden.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("vault-id"), Value: msg.VaultID},
			{Key: []byte("safemode"), Value: []byte(onOff(msg.Enabled))},
		},
	}, nil
}

func (h ToggleHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*ToggleMsg, error) {
	var msg ToggleMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	owner, err := h.owners.VaultOwner(db, msg.VaultID)
	if err != nil {
		return nil, errors.Wrap(err, "vault owner")
	}
	if !h.auth.HasAddress(ctx, owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "vault owner signature required")
	}
	return &msg, nil
}
