package wardentest

import "github.com/warden-one/warden"

// Handler is a mock implementation of the warden.Handler interface.
//
// Each method call is counted and the configured result and error pair is
// returned.
type Handler struct {
	checkCall   int
	CheckResult warden.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult warden.DeliverResult
	DeliverErr    error
}

var _ warden.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	h.checkCall++
	return &h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	h.deliverCall++
	return &h.DeliverResult, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
