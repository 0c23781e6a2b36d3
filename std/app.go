/*
Package std wires the engine together: the full message router, the
standard decorator stack, genesis initialization and the cron task
codec. Embedders that need a different composition can copy this
package and swap parts out.
*/
package std

import (
	"context"
	"path/filepath"
	"strings"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/app"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/cron"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/store/iavl"
	"github.com/warden-one/warden/x"
	"github.com/warden-one/warden/x/crossdomain"
	"github.com/warden-one/warden/x/guardian"
	"github.com/warden-one/warden/x/ledger"
	"github.com/warden-one/warden/x/safemode"
	"github.com/warden-one/warden/x/sigs"
	"github.com/warden-one/warden/x/utils"
	"github.com/warden-one/warden/x/vault"
)

// Authenticator returns the authentication used by all routed
// handlers: transaction signatures plus the conditions a scheduled
// cron task was recorded with.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, cron.Authenticator{})
}

// Router returns the assembled message router. The cross-extension
// collaborators are wired here: the guardian revocation floor is
// answered by the vault policy book, safe mode toggles authorize
// against vault ownership, and vault execution consults the safe mode
// controller and the cross-domain proof verifier.
func Router(auth x.Authenticator, sched warden.Scheduler) *app.Router {
	r := app.NewRouter()

	control := ledger.NewController(ledger.NewAccountBucket())

	ledger.RegisterRoutes(r, auth, control)
	guardian.RegisterRoutes(r, auth, vault.NewPolicyBook())
	safemode.RegisterRoutes(r, auth, vault.NewOwners())
	crossdomain.RegisterRoutes(r, auth)
	vault.RegisterRoutes(r, auth, control, safemode.NewController(), crossdomain.NewVerifier(), sched)
	migration.RegisterRoutes(r, auth)
	sigs.RegisterRoutes(r, auth)

	return r
}

// QueryRouter returns a router exposing every extension's buckets.
func QueryRouter() warden.QueryRouter {
	qr := warden.NewQueryRouter()
	qr.RegisterAll(
		ledger.RegisterQuery,
		guardian.RegisterQuery,
		safemode.RegisterQuery,
		crossdomain.RegisterQuery,
		vault.RegisterQuery,
		migration.RegisterQuery,
		sigs.RegisterQuery,
	)
	return qr
}

// Stack returns the standard decorator chain in front of the router:
// recovery, logging, key tagging, per-transaction savepoint, action
// tagging and signature verification. The key tagger sits above the
// savepoint so writes discarded on failure never produce tags.
func Stack(h warden.Handler) warden.Handler {
	return app.ChainDecorators(
		utils.NewRecovery(),
		utils.NewLogging(),
		utils.NewKeyTagger(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
		utils.NewActionTagger(),
		sigs.NewDecorator(),
	).WithHandler(h)
}

// CronStack returns the stack scheduled tasks are delivered through.
// Tasks carry no signatures, their recorded conditions authenticate
// them, so the signature decorator is left out.
func CronStack(h warden.Handler) warden.Handler {
	return app.ChainDecorators(
		utils.NewRecovery(),
		utils.NewLogging(),
		utils.NewKeyTagger(),
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	).WithHandler(h)
}

// Initializers returns the genesis initializer chain.
func Initializers() warden.Initializer {
	return app.ChainInitializers(
		&migration.Initializer{},
		&ledger.Initializer{},
		&guardian.Initializer{},
		&vault.Initializer{},
		&crossdomain.Initializer{},
	)
}

// NewEngine assembles the complete engine over the given store.
func NewEngine(store warden.CommitKVStore, baseContext warden.Context) (*app.Engine, error) {
	enc := TaskMarshaler{}
	sched := cron.NewScheduler(enc)
	router := Router(Authenticator(), sched)
	ticker := cron.NewTicker(CronStack(router), enc)
	return app.NewEngine(store, Stack(router), ticker, QueryRouter(), Initializers(), baseContext)
}

// GenerateApp wraps the same assembly into an abci application for
// the wardend server command.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	kv, err := CommitKVStore(home)
	if err != nil {
		return nil, err
	}

	enc := TaskMarshaler{}
	sched := cron.NewScheduler(enc)
	router := Router(Authenticator(), sched)
	ticker := cron.NewTicker(CronStack(router), enc)

	store := app.NewStoreApp("warden", kv, QueryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, Stack(router), ticker, debug), nil
}

// CommitKVStore returns a disk-backed store rooted in the given home
// directory, or an in-memory one when home is empty.
func CommitKVStore(home string) (warden.CommitKVStore, error) {
	if home == "" {
		return iavl.MockCommitStore(), nil
	}
	path, err := filepath.Abs(filepath.Join(home, "warden.db"))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database path: %s", path)
	}
	dir := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return iavl.NewCommitStore(dir, name), nil
}

// taskPayload is the stored form of a scheduled task: the conditions
// it runs with plus one concrete message field per schedulable type.
type taskPayload struct {
	Auth          [][]byte                `json:"auth,omitempty"`
	ExpireRequest *vault.ExpireRequestMsg `json:"expire_request,omitempty"`
}

// TaskMarshaler encodes scheduled tasks. Only messages listed in the
// payload sum can be scheduled, anything else is rejected at schedule
// time rather than at delivery.
type TaskMarshaler struct{}

var _ cron.TaskMarshaler = TaskMarshaler{}

// MarshalTask implements the cron.TaskMarshaler interface.
func (TaskMarshaler) MarshalTask(auth []warden.Condition, msg warden.Msg) ([]byte, error) {
	p := taskPayload{Auth: make([][]byte, 0, len(auth))}
	for _, c := range auth {
		p.Auth = append(p.Auth, c)
	}
	switch m := msg.(type) {
	case *vault.ExpireRequestMsg:
		p.ExpireRequest = m
	default:
		return nil, errors.Wrapf(errors.ErrType, "cannot schedule %T", msg)
	}
	return codec.Marshal(&p)
}

// UnmarshalTask implements the cron.TaskMarshaler interface.
func (TaskMarshaler) UnmarshalTask(raw []byte) ([]warden.Condition, warden.Msg, error) {
	var p taskPayload
	if err := codec.Unmarshal(raw, &p); err != nil {
		return nil, nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	auth := make([]warden.Condition, 0, len(p.Auth))
	for _, c := range p.Auth {
		auth = append(auth, warden.Condition(c))
	}
	switch {
	case p.ExpireRequest != nil:
		return auth, p.ExpireRequest, nil
	default:
		return nil, nil, errors.Wrap(errors.ErrEmpty, "task carries no message")
	}
}
