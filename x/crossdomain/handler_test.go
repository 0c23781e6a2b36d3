package crossdomain

import (
	"context"
	"testing"
	"time"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/store"
	"github.com/warden-one/warden/wardentest"
	"github.com/warden-one/warden/wardentest/assert"
)

func relayTestEnv(t testing.TB, relayers []warden.Address, quorum uint32) (warden.KVStore, RelayHandler) {
	t.Helper()
	db := store.MemStore()
	migration.MustInitPkg(db, "crossdomain")
	assert.Nil(t, gconf.Save(db, "crossdomain", &Configuration{
		Metadata:       &warden.Metadata{Schema: 1},
		Owner:          wardentest.NewCondition().Address(),
		Relayers:       relayers,
		RelayerQuorum:  quorum,
		FreshnessBound: warden.AsUnixDuration(24 * time.Hour),
		MessageTimeout: warden.AsUnixDuration(time.Hour),
	}))
	h := RelayHandler{
		auth:      &wardentest.CtxAuth{Key: "auth"},
		messages:  NewMessageBucket(),
		snapshots: NewSnapshotBucket(),
	}
	return db, h
}

func relayCtx(signer warden.Condition, now int64) warden.Context {
	ctx := context.Background()
	ctx = warden.WithChainID(ctx, "test-chain")
	ctx = warden.WithBlockTime(ctx, time.Unix(now, 0))
	auth := &wardentest.CtxAuth{Key: "auth"}
	return auth.SetConditions(ctx, signer)
}

func snapshotMsg(t testing.TB, domain string, observedAt warden.UnixTime) *RelayMessageMsg {
	t.Helper()
	payload := &SnapshotPayload{
		DomainID:   domain,
		Root:       MembershipRoot([][]byte{[]byte("g1"), []byte("g2")}),
		LeafCount:  2,
		ObservedAt: observedAt,
	}
	id, err := MessageID(domain, payload)
	assert.Nil(t, err)
	return &RelayMessageMsg{
		Metadata:     &warden.Metadata{Schema: 1},
		MessageID:    id,
		SourceDomain: domain,
		Payload:      payload,
	}
}

func TestRelayQuorum(t *testing.T) {
	var (
		r1 = wardentest.NewCondition()
		r2 = wardentest.NewCondition()
		r3 = wardentest.NewCondition()
	)
	db, h := relayTestEnv(t, []warden.Address{r1.Address(), r2.Address(), r3.Address()}, 2)

	msg := snapshotMsg(t, "domain-9", 5000)
	tx := &wardentest.Tx{Msg: msg}

	// First acknowledgement confirms the message but applies nothing.
	_, err := h.Deliver(relayCtx(r1, 6000), db, tx)
	assert.Nil(t, err)

	var record Message
	assert.Nil(t, NewMessageBucket().One(db, msg.MessageID, &record))
	assert.Equal(t, MessageConfirmed, record.Status)
	assert.Equal(t, 1, len(record.Relayers))
	if err := NewSnapshotBucket().Has(db, []byte("domain-9")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("snapshot trusted before quorum: %+v", err)
	}

	// The same relayer cannot count twice.
	if _, err := h.Deliver(relayCtx(r1, 6010), db, tx); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want ErrDuplicate, got %+v", err)
	}

	// A second, distinct relayer completes the quorum and the payload
	// is applied in the same transaction.
	_, err = h.Deliver(relayCtx(r2, 6020), db, tx)
	assert.Nil(t, err)

	assert.Nil(t, NewMessageBucket().One(db, msg.MessageID, &record))
	assert.Equal(t, MessageExecuted, record.Status)

	var snap Snapshot
	assert.Nil(t, NewSnapshotBucket().One(db, []byte("domain-9"), &snap))
	assert.Equal(t, warden.UnixTime(5000), snap.ObservedAt)
	assert.Equal(t, warden.UnixTime(6020), snap.TrustedAt)

	// Late acknowledgements of a processed message are suppressed.
	if _, err := h.Deliver(relayCtx(r3, 6030), db, tx); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want ErrDuplicate, got %+v", err)
	}
}

func TestRelayUnauthorized(t *testing.T) {
	r1 := wardentest.NewCondition()
	db, h := relayTestEnv(t, []warden.Address{r1.Address()}, 1)

	msg := snapshotMsg(t, "domain-9", 5000)
	stranger := wardentest.NewCondition()
	if _, err := h.Deliver(relayCtx(stranger, 6000), db, &wardentest.Tx{Msg: msg}); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want ErrUnauthorized, got %+v", err)
	}
}

func TestRelayMessageIDMismatch(t *testing.T) {
	r1 := wardentest.NewCondition()
	db, h := relayTestEnv(t, []warden.Address{r1.Address()}, 1)

	msg := snapshotMsg(t, "domain-9", 5000)
	msg.MessageID[0] ^= 0x01
	if _, err := h.Deliver(relayCtx(r1, 6000), db, &wardentest.Tx{Msg: msg}); !errors.ErrInput.Is(err) {
		t.Fatalf("want ErrInput, got %+v", err)
	}
}

func TestRelayTimeout(t *testing.T) {
	var (
		r1 = wardentest.NewCondition()
		r2 = wardentest.NewCondition()
	)
	db, h := relayTestEnv(t, []warden.Address{r1.Address(), r2.Address()}, 2)

	msg := snapshotMsg(t, "domain-9", 5000)
	tx := &wardentest.Tx{Msg: msg}

	_, err := h.Deliver(relayCtx(r1, 6000), db, tx)
	assert.Nil(t, err)

	// The quorum completing acknowledgement arrives past the message
	// timeout: the message is observed failed and nothing is applied.
	_, err = h.Deliver(relayCtx(r2, 6000+3601), db, tx)
	assert.Nil(t, err)

	var record Message
	assert.Nil(t, NewMessageBucket().One(db, msg.MessageID, &record))
	assert.Equal(t, MessageFailed, record.Status)
	if err := NewSnapshotBucket().Has(db, []byte("domain-9")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("timed out message applied a snapshot: %+v", err)
	}

	// A failed message stays failed.
	if _, err := h.Deliver(relayCtx(r2, 6000+3700), db, tx); !errors.ErrState.Is(err) {
		t.Fatalf("want ErrState, got %+v", err)
	}
}

func TestRelayRefusesOlderSnapshot(t *testing.T) {
	r1 := wardentest.NewCondition()
	db, h := relayTestEnv(t, []warden.Address{r1.Address()}, 1)

	// Trust a snapshot observed at 5000.
	_, err := h.Deliver(relayCtx(r1, 6000), db, &wardentest.Tx{Msg: snapshotMsg(t, "domain-9", 5000)})
	assert.Nil(t, err)

	// An older observation can never replace it.
	older := snapshotMsg(t, "domain-9", 4000)
	if _, err := h.Deliver(relayCtx(r1, 6100), db, &wardentest.Tx{Msg: older}); !errors.ErrState.Is(err) {
		t.Fatalf("want ErrState, got %+v", err)
	}

	// A newer one replaces it.
	_, err = h.Deliver(relayCtx(r1, 6200), db, &wardentest.Tx{Msg: snapshotMsg(t, "domain-9", 5500)})
	assert.Nil(t, err)

	var snap Snapshot
	assert.Nil(t, NewSnapshotBucket().One(db, []byte("domain-9"), &snap))
	assert.Equal(t, warden.UnixTime(5500), snap.ObservedAt)
}
