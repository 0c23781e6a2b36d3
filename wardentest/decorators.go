package wardentest

import "github.com/warden-one/warden"

// Decorator is a mock implementation of the warden.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ warden.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx, next warden.Checker) (*warden.CheckResult, error) {
	d.checkCall++

	if d.CheckErr != nil {
		return &warden.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx, next warden.Deliverer) (*warden.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return &warden.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

func Decorate(h warden.Handler, d warden.Decorator) warden.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn warden.Handler
	dc warden.Decorator
}

var _ warden.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
