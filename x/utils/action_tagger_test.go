package utils_test

import (
	"context"
	"testing"

	"github.com/tendermint/tendermint/libs/common"
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/app"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/store"
	"github.com/warden-one/warden/wardentest"
	"github.com/warden-one/warden/wardentest/assert"
	"github.com/warden-one/warden/x/utils"
)

func stringTag(key, value string) common.KVPair {
	return common.KVPair{
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		stack warden.Handler
		tx    warden.Tx
		err   *errors.Error
		tags  []common.KVPair
	}{
		"simple call": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&wardentest.Handler{},
			),
			tx:   &wardentest.Tx{Msg: &wardentest.Msg{RoutePath: "vault/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "vault/create")},
		},
		"passes through error": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&wardentest.Handler{DeliverErr: errors.ErrHuman},
			),
			tx:  &wardentest.Tx{Msg: &wardentest.Msg{RoutePath: "vault/create"}},
			err: errors.ErrHuman,
		},
		"tags are additive": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&wardentest.Handler{
					DeliverResult: warden.DeliverResult{Tags: []common.KVPair{stringTag(utils.ActionKey, "random")}},
				},
			),
			tx:   &wardentest.Tx{Msg: &wardentest.Msg{RoutePath: "vault/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "random"), stringTag(utils.ActionKey, "vault/create")},
		},
		"nested dispatch tags every action": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&nestedHandler{
					inner: app.ChainDecorators(utils.NewActionTagger()).WithHandler(&wardentest.Handler{}),
					msg:   &wardentest.Msg{RoutePath: "ledger/send"},
				},
			),
			tx: &wardentest.Tx{Msg: &wardentest.Msg{RoutePath: "vault/execute"}},
			tags: []common.KVPair{
				stringTag(utils.ActionKey, "ledger/send"),
				stringTag(utils.ActionKey, "vault/execute"),
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()

			// we get tagged on success
			res, err := tc.stack.Deliver(ctx, db, tc.tx)
			if tc.err != nil {
				if !tc.err.Is(err) {
					t.Fatalf("unexpected error type returned: %v", err)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, len(tc.tags), len(res.Tags))
			for i := range tc.tags {
				assert.Equal(t, string(tc.tags[i].Key), string(res.Tags[i].Key))
				assert.Equal(t, string(tc.tags[i].Value), string(res.Tags[i].Value))
			}
		})
	}
}

// nestedHandler dispatches a follow up message through an inner
// stack, the way the vault execution router dispatches effects.
type nestedHandler struct {
	inner warden.Handler
	msg   warden.Msg
}

var _ warden.Handler = (*nestedHandler)(nil)

func (h *nestedHandler) Check(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.CheckResult, error) {
	return h.inner.Check(ctx, db, &wardentest.Tx{Msg: h.msg})
}

func (h *nestedHandler) Deliver(ctx warden.Context, db warden.KVStore, tx warden.Tx) (*warden.DeliverResult, error) {
	res, err := h.inner.Deliver(ctx, db, &wardentest.Tx{Msg: h.msg})
	if err != nil {
		return nil, err
	}
	return &warden.DeliverResult{Tags: res.Tags}, nil
}
