package ledger

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r warden.Registry, auth x.Authenticator, control Controller) {
	r = migration.SchemaMigratingRegistry("ledger", r)
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// RegisterQuery registers the account bucket under /accounts.
func RegisterQuery(qr warden.QueryRouter) {
	NewAccountBucket().Register("accounts", qr)
}

// SendHandler processes plain fund transfers.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ warden.Handler = SendHandler{}

// NewSendHandler returns a handler for the send message.
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check verifies the transfer is authorized. Available funds are not
// inspected until delivery.
func (h SendHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the funds.
func (h SendHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(db, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, errors.Wrap(err, "move coins")
	}
	return &warden.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx warden.Context, tx warden.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	return &msg, nil
}
