package guardian

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
	"github.com/warden-one/warden/x"
)

const (
	registerCost = 100
	updateCost   = 50
)

// QuorumFloor reports the largest regular-guardian quorum any live
// vault policy requires. Revoking a guardian must never leave a vault
// unable to reach that quorum. Implemented by the vault extension and
// wired during application construction.
type QuorumFloor interface {
	HighestQuorum(db warden.ReadOnlyKVStore) (uint32, error)
}

// RegisterRoutes will instantiate and register all handlers in this
// package. The floor may be nil when no vault policies exist to protect.
func RegisterRoutes(r warden.Registry, auth x.Authenticator, floor QuorumFloor) {
	r = migration.SchemaMigratingRegistry("guardian", r)

	bucket := NewGuardianBucket()
	r.Handle(&RegisterGuardianMsg{}, RegisterHandler{auth: auth, bucket: bucket})
	r.Handle(&RevokeGuardianMsg{}, RevokeHandler{auth: auth, bucket: bucket, floor: floor})
	r.Handle(&ExpireGuardianMsg{}, ExpireHandler{auth: auth, bucket: bucket})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// RegisterQuery registers the guardian bucket under /guardians.
func RegisterQuery(qr warden.QueryRouter) {
	NewGuardianBucket().Register("guardians", qr)
}

// NewConfigHandler returns the gconf based configuration update handler
// for this package.
func NewConfigHandler(auth x.Authenticator) warden.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler("guardian", &conf, auth, migration.CurrentAdmin)
}

// RegisterHandler creates pending guardian records. Only the
// configuration owner may register, and every record matures after its
// activation delay so a quorum cannot be stacked within a single block.
type RegisterHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ warden.Handler = RegisterHandler{}

func (h RegisterHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: registerCost}, nil
}

func (h RegisterHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := warden.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	at := warden.AsUnixTime(now)
	g := Guardian{
		Metadata:     &warden.Metadata{Schema: 1},
		Address:      msg.Address,
		Role:         msg.Role,
		Status:       StatusPending,
		RegisteredAt: at,
		ActivatedAt:  at.Add(msg.ActivationDelay.Duration()),
	}
	if msg.ExpiresIn > 0 {
		g.ExpiresAt = at.Add(msg.ExpiresIn.Duration())
	}
	if _, err := h.bucket.Put(db, msg.Address, &g); err != nil {
		return nil, errors.Wrap(err, "store guardian")
	}
	return &warden.DeliverResult{}, nil
}

func (h RegisterHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*RegisterGuardianMsg, error) {
	var msg RegisterGuardianMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	if msg.ActivationDelay < conf.MinActivationDelay {
		return nil, errors.Wrapf(errors.ErrInput,
			"activation delay below the configured minimum of %s", conf.MinActivationDelay)
	}
	switch err := h.bucket.Has(db, msg.Address); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "guardian %s", msg.Address)
	case errors.ErrNotFound.Is(err):
		// All good, the address is free.
	default:
		return nil, errors.Wrap(err, "check duplicate")
	}
	return &msg, nil
}

// RevokeHandler terminates guardian memberships. A revocation that
// would leave fewer active regular guardians than the highest vault
// quorum is rejected.
type RevokeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	floor  QuorumFloor
}

var _ warden.Handler = RevokeHandler{}

func (h RevokeHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: updateCost}, nil
}

func (h RevokeHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	g.Status = StatusRevoked
	if _, err := h.bucket.Put(db, msg.Address, g); err != nil {
		return nil, errors.Wrap(err, "store guardian")
	}
	return &warden.DeliverResult{}, nil
}

func (h RevokeHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*RevokeGuardianMsg, *Guardian, error) {
	var msg RevokeGuardianMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	var g Guardian
	if err := h.bucket.One(db, msg.Address, &g); err != nil {
		return nil, nil, errors.Wrapf(err, "guardian %s", msg.Address)
	}
	now, err := warden.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	at := warden.AsUnixTime(now)
	switch effectiveStatus(&g, at) {
	case StatusExpired, StatusRevoked:
		return nil, nil, errors.Wrap(errors.ErrState, "membership already terminated")
	case StatusActive:
		if g.Role == RoleRegular && h.floor != nil {
			if err := h.ensureFloor(db, at); err != nil {
				return nil, nil, err
			}
		}
	}
	return &msg, &g, nil
}

func (h RevokeHandler) ensureFloor(db warden.KVStore, at warden.UnixTime) error {
	d := Directory{bucket: h.bucket}
	active, err := d.ActiveCount(db, RoleRegular, at)
	if err != nil {
		return errors.Wrap(err, "active count")
	}
	required, err := h.floor.HighestQuorum(db)
	if err != nil {
		return errors.Wrap(err, "highest quorum")
	}
	if active-1 < required {
		return errors.Wrapf(ErrQuorum,
			"revocation leaves %d active guardians, %d required", active-1, required)
	}
	return nil
}

// ExpireHandler persists the expiration of a matured membership. Anyone
// may send the message, it cannot terminate a record before its time.
type ExpireHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ warden.Handler = ExpireHandler{}

func (h ExpireHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &warden.CheckResult{GasAllocated: updateCost}, nil
}

func (h ExpireHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	g.Status = StatusExpired
	if _, err := h.bucket.Put(db, msg.Address, g); err != nil {
		return nil, errors.Wrap(err, "store guardian")
	}
	return &warden.DeliverResult{}, nil
}

func (h ExpireHandler) validate(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*ExpireGuardianMsg, *Guardian, error) {
	var msg ExpireGuardianMsg
	if err := warden.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	var g Guardian
	if err := h.bucket.One(db, msg.Address, &g); err != nil {
		return nil, nil, errors.Wrapf(err, "guardian %s", msg.Address)
	}
	switch g.Status {
	case StatusExpired, StatusRevoked:
		return nil, nil, errors.Wrap(errors.ErrState, "membership already terminated")
	}
	if g.ExpiresAt == 0 {
		return nil, nil, errors.Wrap(errors.ErrState, "membership does not expire")
	}
	now, err := warden.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	if warden.AsUnixTime(now) < g.ExpiresAt {
		return nil, nil, errors.Wrap(errors.ErrTiming, "membership not expired yet")
	}
	return &msg, &g, nil
}
