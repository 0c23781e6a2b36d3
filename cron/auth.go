package cron

import (
	"context"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/x"
)

type ctxKey int

const (
	ctxKeyConditions ctxKey = iota
)

// withAuth returns a context instance with the conditions attached. Attached
// conditions are used for authentication by authenticator implementation from
// this package.
func withAuth(ctx warden.Context, cs []warden.Condition) warden.Context {
	if old, ok := ctx.Value(ctxKeyConditions).([]warden.Condition); ok {
		cs = append(cs, old...)
	}
	return context.WithValue(ctx, ctxKeyConditions, cs)
}

// Authenticator implements an x.Authenticator interface that should be used to
// authorize cron task execution.
// Use it together with the scheduler auth conditions to control the cron task
// execution authentication.
type Authenticator struct{}

var _ x.Authenticator = (*Authenticator)(nil)

// GetConditions implements x.Authenticator interface.
func (Authenticator) GetConditions(ctx warden.Context) []warden.Condition {
	val, ok := ctx.Value(ctxKeyConditions).([]warden.Condition)
	if !ok {
		return nil
	}
	return val
}

// HasAddress implements x.Authenticator interface.
func (a Authenticator) HasAddress(ctx warden.Context, addr warden.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
