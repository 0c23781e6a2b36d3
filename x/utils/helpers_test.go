package utils

import (
	"github.com/warden-one/warden"
)

// writeHandler writes the given key, value pair on every call
// and returns the given error.
type writeHandler struct {
	key   []byte
	value []byte
	err   error
}

var _ warden.Handler = writeHandler{}

func (h writeHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return &warden.CheckResult{}, nil
}

func (h writeHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return &warden.DeliverResult{}, nil
}
