package utils

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ warden.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx warden.Context, store warden.KVStore, tx warden.Tx, next warden.Checker) (_ *warden.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx warden.Context, store warden.KVStore, tx warden.Tx, next warden.Deliverer) (_ *warden.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
