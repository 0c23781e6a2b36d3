package app

import (
	"fmt"
	"regexp"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

// isPath is the RegExp to ensure the routes make reasonable paths
var isPath = regexp.MustCompile(`^[a-z0-9_/]{4,40}$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]warden.Handler
}

var _ warden.Registry = (*Router)(nil)
var _ warden.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]warden.Handler, 10),
	}
}

// Handle implements warden.Registry interface.
func (r *Router) Handle(m warden.Msg, h warden.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("double registration of a handler for path %q", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this message. If no handler is
// registered a not found handler that returns an error for every call is
// provided instead.
func (r *Router) handler(m warden.Msg) warden.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx warden.Context, store warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx warden.Context, store warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound regardless of the arguments. It
// is a convenient way to handle messages that could not be routed.
type notFoundHandler string

var _ warden.Handler = notFoundHandler("")

func (path notFoundHandler) Check(ctx warden.Context, store warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(ctx warden.Context, store warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
