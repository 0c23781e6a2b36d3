package app

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

// Engine is the programmatic counterpart of BaseApp: the same commit
// store, decorator stack and query routing, driven by direct method
// calls instead of the ABCI wire. Embedders advance it with
// Begin/Commit pairs and submit transactions in between.
type Engine struct {
	store       *CommitStore
	handler     warden.Handler
	ticker      warden.Ticker
	queryRouter warden.QueryRouter
	initializer warden.Initializer

	chainID string
	height  int64

	baseContext  warden.Context
	blockContext warden.Context
}

// NewEngine returns an engine over the given store. The chain ID is
// loaded from the store when one was persisted by an earlier
// InitChain.
func NewEngine(
	store warden.CommitKVStore,
	handler warden.Handler,
	ticker warden.Ticker,
	queryRouter warden.QueryRouter,
	initializer warden.Initializer,
	baseContext warden.Context,
) (*Engine, error) {
	e := &Engine{
		store:       NewCommitStore(store),
		handler:     handler,
		ticker:      ticker,
		queryRouter: queryRouter,
		initializer: initializer,
		baseContext: warden.WithLogger(baseContext, log.NewNopLogger()),
	}

	chainID, err := loadChainID(e.store.deliver)
	if err != nil {
		return nil, errors.Wrap(err, "load chain id")
	}
	if chainID != "" {
		e.chainID = chainID
		e.baseContext = warden.WithChainID(e.baseContext, chainID)
	}
	info, err := e.store.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	e.height = info.Version
	e.blockContext = warden.WithHeight(e.baseContext, info.Version)
	return e, nil
}

// WithLogger replaces the nop logger.
func (e *Engine) WithLogger(logger log.Logger) *Engine {
	e.baseContext = warden.WithLogger(e.baseContext, logger)
	return e
}

// ChainID returns the chain ID persisted by InitChain.
func (e *Engine) ChainID() string {
	return e.chainID
}

// Height returns the last begun block height.
func (e *Engine) Height() int64 {
	return e.height
}

// InitChain runs every registered initializer against the genesis
// options and persists the chain ID. A second initialization is
// rejected.
func (e *Engine) InitChain(opts warden.Options, chainID string) error {
	if e.chainID != "" {
		return errors.Wrapf(errors.ErrState, "chain %s already initialized", e.chainID)
	}
	if chainID == "" {
		return errors.Wrap(errors.ErrInput, "chain id is required")
	}
	if err := saveChainID(e.store.deliver, chainID); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	e.chainID = chainID
	e.baseContext = warden.WithChainID(e.baseContext, chainID)
	e.blockContext = warden.WithHeight(e.baseContext, e.height)
	if e.initializer == nil {
		return nil
	}
	return e.initializer.FromGenesis(opts, e.store.deliver)
}

// Begin opens a block at the given height and time and fires the
// ticker, delivering any scheduled task that came due.
func (e *Engine) Begin(height int64, blockTime time.Time) error {
	if e.chainID == "" {
		return errors.Wrap(errors.ErrState, "chain not initialized")
	}
	if height <= e.height {
		return errors.Wrapf(errors.ErrInput, "height %d is not beyond %d", height, e.height)
	}
	e.height = height
	ctx := warden.WithHeight(e.baseContext, height)
	ctx = warden.WithBlockTime(ctx, blockTime)
	e.blockContext = ctx

	if e.ticker != nil {
		e.ticker.Tick(warden.WithLogInfo(ctx, "call", "begin_block"), e.store.deliver)
	}
	return nil
}

// Check runs the transaction through the stack against the check
// cache. State written there never commits.
func (e *Engine) Check(tx warden.Tx) (*warden.CheckResult, error) {
	ctx := warden.WithLogInfo(e.blockContext,
		"call", "check_tx",
		"path", warden.GetPath(tx))
	return e.handler.Check(ctx, e.store.check, tx)
}

// Deliver runs the transaction through the stack against the deliver
// state. The savepoint decorator discards the writes of a failed
// delivery.
func (e *Engine) Deliver(tx warden.Tx) (*warden.DeliverResult, error) {
	ctx := warden.WithLogInfo(e.blockContext,
		"call", "deliver_tx",
		"path", warden.GetPath(tx))
	return e.handler.Deliver(ctx, e.store.deliver, tx)
}

// Commit writes the block's deliver state to the underlying store and
// resets the check cache on top of it.
func (e *Engine) Commit() (warden.CommitID, error) {
	commitID, err := e.store.Commit()
	if err != nil {
		return warden.CommitID{}, errors.Wrap(err, "commit")
	}
	return commitID, nil
}

// Query resolves a read against the last committed state through the
// registered query handlers.
func (e *Engine) Query(path string, data []byte) ([]warden.Model, error) {
	path, mod := splitPath(path)
	h := e.queryRouter.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for %q", path)
	}
	return h.Query(e.store.committed.CacheWrap(), mod, data)
}
