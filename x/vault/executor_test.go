package vault

import (
	"testing"
	"time"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/wardentest"
	"github.com/warden-one/warden/wardentest/assert"
	"github.com/warden-one/warden/x/guardian"
	"github.com/warden-one/warden/x/ledger"
	"github.com/warden-one/warden/x/safemode"
)

func newExecuteHandler() ExecuteHandler {
	return ExecuteHandler{
		auth:     &wardentest.Auth{Signer: wardentest.NewCondition()},
		vaults:   NewVaultBucket(),
		requests: NewRequestBucket(),
		control:  ledger.NewController(ledger.NewAccountBucket()),
		safe:     safemode.NewController(),
	}
}

func executeTx(requestID []byte) warden.Tx {
	return &wardentest.Tx{Msg: &ExecuteMsg{
		Metadata:  &warden.Metadata{Schema: 1},
		RequestID: requestID,
	}}
}

func fundVault(t testing.TB, db warden.KVStore, vaultID []byte, amount coin.Coin) {
	t.Helper()
	control := ledger.NewController(ledger.NewAccountBucket())
	if err := control.IssueCoins(db, VaultCondition(vaultID).Address(), amount); err != nil {
		t.Fatalf("cannot fund vault: %+v", err)
	}
}

// Three regular guardians, quorum of two. Two votes approve the
// withdrawal, execution pays out once and only once.
func TestWithdrawalLifecycle(t *testing.T) {
	var (
		alice = wardentest.NewCondition()
		bob   = wardentest.NewCondition()
		carol = wardentest.NewCondition()
	)

	f := newFixture(t, []*Rule{withdrawalRule()}, map[string]guardian.Role{
		string(alice.Address()): guardian.RoleRegular,
		string(bob.Address()):   guardian.RoleRegular,
		string(carol.Address()): guardian.RoleRegular,
	})
	fundVault(t, f.db, f.vaultID, coin.NewCoin(100, 0, "IOV"))

	dest := wardentest.NewCondition().Address()
	req := pendingWithdrawal(f, alice.Address(), false)
	req.Transfer = &Transfer{Destination: dest, Amount: coin.NewCoinp(40, 0, "IOV")}
	requestID := f.storeRequest(t, req)

	requests := NewRequestBucket()
	ops := voteOps{votes: NewVoteBucket(), dir: guardian.NewDirectory()}
	for _, voter := range []warden.Condition{alice, bob} {
		h := VoteHandler{
			auth: &wardentest.Auth{Signer: voter}, requests: requests,
			book: NewPolicyBook(), dir: guardian.NewDirectory(), ops: ops,
			verifier: okVerifier{},
		}
		_, err := h.Deliver(atTime(10100), f.db, &wardentest.Tx{Msg: &VoteMsg{
			Metadata:  &warden.Metadata{Schema: 1},
			RequestID: requestID,
		}})
		assert.Nil(t, err)
	}

	exec := newExecuteHandler()
	_, err := exec.Deliver(atTime(10200), f.db, executeTx(requestID))
	assert.Nil(t, err)

	control := ledger.NewController(ledger.NewAccountBucket())
	got, err := control.Balance(f.db, dest)
	assert.Nil(t, err)
	want := coin.Coins{coin.NewCoinp(40, 0, "IOV")}
	assert.Equal(t, want, got)

	var stored Request
	assert.Nil(t, requests.One(f.db, requestID, &stored))
	assert.Equal(t, RequestExecuted, stored.Status)
	assert.Equal(t, ViaQuorum, stored.ApprovedVia)
	assert.Equal(t, warden.UnixTime(10200), stored.ExecutedAt)

	// The second execution attempt must fail, nothing is paid twice.
	if _, err := exec.Deliver(atTime(10300), f.db, executeTx(requestID)); !errors.ErrState.Is(err) {
		t.Fatalf("double execution: %+v", err)
	}
	got, err = control.Balance(f.db, dest)
	assert.Nil(t, err)
	assert.Equal(t, want, got)
}

func TestExecuteTiming(t *testing.T) {
	alice := wardentest.NewCondition()

	cases := map[string]struct {
		prepare func(req *Request)
		now     int64
		wantErr *errors.Error
	}{
		"pending request has no quorum": {
			prepare: func(*Request) {},
			now:     10100,
			wantErr: guardian.ErrQuorum,
		},
		"overdue pending request is expired": {
			prepare: func(*Request) {},
			now:     10000 + 3601,
			wantErr: errors.ErrExpired,
		},
		"timelock still in effect": {
			prepare: func(req *Request) {
				req.Status = RequestApproved
				req.ApprovedVia = ViaQuorum
				req.TimelockDeadline = 10000 + 7200
			},
			now:     10000 + 7199,
			wantErr: errors.ErrTiming,
		},
		"timelock elapsed": {
			prepare: func(req *Request) {
				req.Status = RequestApproved
				req.ApprovedVia = ViaQuorum
				req.TimelockDeadline = 10000 + 7200
			},
			now: 10000 + 7200,
		},
		"cancelled request cannot execute": {
			prepare: func(req *Request) {
				req.Status = RequestCancelled
			},
			now:     10100,
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, []*Rule{withdrawalRule()}, map[string]guardian.Role{
				string(alice.Address()): guardian.RoleRegular,
			})
			fundVault(t, f.db, f.vaultID, coin.NewCoin(100, 0, "IOV"))

			req := pendingWithdrawal(f, alice.Address(), false)
			tc.prepare(req)
			requestID := f.storeRequest(t, req)

			h := newExecuteHandler()
			if _, err := h.Deliver(atTime(tc.now), f.db, executeTx(requestID)); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
		})
	}
}

// Safe mode blocks the guardian approved path no matter the votes, but
// a request the owner originated passes through.
func TestExecuteUnderSafeMode(t *testing.T) {
	alice := wardentest.NewCondition()

	cases := map[string]struct {
		ownerOriginated bool
		wantErr         *errors.Error
	}{
		"guardian path is blocked": {
			ownerOriginated: false,
			wantErr:         safemode.ErrSafeMode,
		},
		"owner originated passes": {
			ownerOriginated: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, []*Rule{withdrawalRule()}, map[string]guardian.Role{
				string(alice.Address()): guardian.RoleRegular,
			})
			fundVault(t, f.db, f.vaultID, coin.NewCoin(100, 0, "IOV"))

			safe := safemode.NewController()
			assert.Nil(t, safe.Toggle(f.db, f.vaultID, true, f.owner.Address(), "audit", 10050))

			source := alice.Address()
			if tc.ownerOriginated {
				source = f.owner.Address()
			}
			req := pendingWithdrawal(f, source, tc.ownerOriginated)
			req.Status = RequestApproved
			req.ApprovedVia = ViaQuorum
			requestID := f.storeRequest(t, req)

			h := newExecuteHandler()
			if _, err := h.Deliver(atTime(10100), f.db, executeTx(requestID)); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			// Disabling safe mode lets the blocked request proceed,
			// approval was never cancelled.
			if tc.wantErr != nil {
				assert.Nil(t, safe.Toggle(f.db, f.vaultID, false, f.owner.Address(), "audit done", 10150))
				if _, err := h.Deliver(atTime(10200), f.db, executeTx(requestID)); err != nil {
					t.Fatalf("execution after safe mode: %+v", err)
				}
			}
		})
	}
}

// The emergency unlock timeout fallback: not executable one second
// before the fallback delay elapses, executable right at it, approved
// via timeout and clearing safe mode.
func TestEmergencyUnlockTimeout(t *testing.T) {
	emma := wardentest.NewCondition()

	f := newFixture(t, []*Rule{emergencyRule()}, map[string]guardian.Role{
		string(emma.Address()): guardian.RoleEmergency,
	})
	safe := safemode.NewController()
	assert.Nil(t, safe.Toggle(f.db, f.vaultID, true, f.owner.Address(), "incident", 9000))

	req := &Request{
		Metadata:       &warden.Metadata{Schema: 1},
		VaultID:        f.vaultID,
		Kind:           KindEmergencyUnlock,
		Unlock:         &Unlock{Comment: "incident resolved"},
		Source:         emma.Address(),
		PolicyVersion:  1,
		CreatedAt:      10000,
		VotingDeadline: 10000 + 3600,
		FallbackAt:     10000 + 1800,
		Status:         RequestPending,
	}
	requestID := f.storeRequest(t, req)

	h := newExecuteHandler()
	if _, err := h.Deliver(atTime(10000+1799), f.db, executeTx(requestID)); !errors.ErrTiming.Is(err) {
		t.Fatalf("execution before the fallback delay: %+v", err)
	}

	_, err := h.Deliver(atTime(10000+1800), f.db, executeTx(requestID))
	assert.Nil(t, err)

	var stored Request
	assert.Nil(t, NewRequestBucket().One(f.db, requestID, &stored))
	assert.Equal(t, RequestExecuted, stored.Status)
	assert.Equal(t, ViaTimeout, stored.ApprovedVia)

	enabled, err := safe.Enabled(f.db, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, false, enabled)
}

// The emergency override quorum escapes safe mode with no cooling
// period.
func TestEmergencyUnlockOverride(t *testing.T) {
	emma := wardentest.NewCondition()

	f := newFixture(t, []*Rule{emergencyRule()}, map[string]guardian.Role{
		string(emma.Address()): guardian.RoleEmergency,
	})
	safe := safemode.NewController()
	assert.Nil(t, safe.Toggle(f.db, f.vaultID, true, f.owner.Address(), "incident", 9000))

	req := &Request{
		Metadata:       &warden.Metadata{Schema: 1},
		VaultID:        f.vaultID,
		Kind:           KindEmergencyUnlock,
		Unlock:         &Unlock{},
		Source:         emma.Address(),
		PolicyVersion:  1,
		CreatedAt:      10000,
		VotingDeadline: 10000 + 3600,
		FallbackAt:     10000 + 1800,
		Status:         RequestPending,
	}
	requestID := f.storeRequest(t, req)

	requests := NewRequestBucket()
	vote := VoteHandler{
		auth: &wardentest.Auth{Signer: emma}, requests: requests,
		book: NewPolicyBook(), dir: guardian.NewDirectory(),
		ops:      voteOps{votes: NewVoteBucket(), dir: guardian.NewDirectory()},
		verifier: okVerifier{},
	}
	_, err := vote.Deliver(atTime(10100), f.db, &wardentest.Tx{Msg: &VoteMsg{
		Metadata:  &warden.Metadata{Schema: 1},
		RequestID: requestID,
	}})
	assert.Nil(t, err)

	var stored Request
	assert.Nil(t, requests.One(f.db, requestID, &stored))
	assert.Equal(t, RequestApproved, stored.Status)
	assert.Equal(t, ViaOverride, stored.ApprovedVia)
	assert.Equal(t, warden.UnixTime(0), stored.TimelockDeadline)

	// Executable immediately, long before the fallback delay.
	h := newExecuteHandler()
	_, err = h.Deliver(atTime(10200), f.db, executeTx(requestID))
	assert.Nil(t, err)

	enabled, err := safe.Enabled(f.db, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, false, enabled)
}

// A batch is all or nothing: a failing item discards every earlier
// move of the same attempt.
func TestBatchWithdrawalAtomicity(t *testing.T) {
	alice := wardentest.NewCondition()

	f := newFixture(t, []*Rule{{
		Kind:         KindBatchWithdrawal,
		Quorum:       1,
		VotingPeriod: warden.AsUnixDuration(time.Hour),
	}}, map[string]guardian.Role{
		string(alice.Address()): guardian.RoleRegular,
	})
	fundVault(t, f.db, f.vaultID, coin.NewCoin(10, 0, "IOV"))

	var (
		first  = wardentest.NewCondition().Address()
		second = wardentest.NewCondition().Address()
	)
	req := &Request{
		Metadata: &warden.Metadata{Schema: 1},
		VaultID:  f.vaultID,
		Kind:     KindBatchWithdrawal,
		Batch: &BatchTransfer{Items: []*Transfer{
			{Destination: first, Amount: coin.NewCoinp(6, 0, "IOV")},
			{Destination: second, Amount: coin.NewCoinp(6, 0, "IOV")},
		}},
		Source:         alice.Address(),
		PolicyVersion:  1,
		CreatedAt:      10000,
		VotingDeadline: 10000 + 3600,
		Status:         RequestApproved,
		ApprovedVia:    ViaQuorum,
	}
	requestID := f.storeRequest(t, req)

	// Deliver against a cache to emulate the transaction savepoint:
	// an error discards every write of the attempt.
	cache := f.db.CacheWrap()
	h := newExecuteHandler()
	if _, err := h.Deliver(atTime(10100), cache, executeTx(requestID)); !errors.ErrAmount.Is(err) {
		t.Fatalf("second item must exceed the funds: %+v", err)
	}
	cache.Discard()

	control := ledger.NewController(ledger.NewAccountBucket())
	if _, err := control.Balance(f.db, first); !errors.ErrNotFound.Is(err) {
		t.Fatalf("first item must have been rolled back: %+v", err)
	}
	var stored Request
	assert.Nil(t, NewRequestBucket().One(f.db, requestID, &stored))
	assert.Equal(t, RequestApproved, stored.Status)

	// A batch the vault can cover is applied in full.
	stored.Batch.Items[1].Amount = coin.NewCoinp(4, 0, "IOV")
	_, err := NewRequestBucket().Put(f.db, requestID, &stored)
	assert.Nil(t, err)

	res, err := h.Deliver(atTime(10200), f.db, executeTx(requestID))
	assert.Nil(t, err)
	var result BatchResult
	assert.Nil(t, result.Unmarshal(res.Data))
	assert.Equal(t, 2, len(result.Items))

	got, err := control.Balance(f.db, second)
	assert.Nil(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoinp(4, 0, "IOV")}, got)
}

func TestRecoveryExecution(t *testing.T) {
	alice := wardentest.NewCondition()
	newOwner := wardentest.NewCondition()

	f := newFixture(t, []*Rule{{
		Kind:         KindRecovery,
		Quorum:       1,
		VotingPeriod: warden.AsUnixDuration(time.Hour),
	}}, map[string]guardian.Role{
		string(alice.Address()): guardian.RoleRegular,
	})

	req := &Request{
		Metadata:       &warden.Metadata{Schema: 1},
		VaultID:        f.vaultID,
		Kind:           KindRecovery,
		Recovery:       &Recovery{NewOwner: newOwner.Address()},
		Source:         alice.Address(),
		PolicyVersion:  1,
		CreatedAt:      10000,
		VotingDeadline: 10000 + 3600,
		Status:         RequestApproved,
		ApprovedVia:    ViaQuorum,
	}
	requestID := f.storeRequest(t, req)

	h := newExecuteHandler()
	_, err := h.Deliver(atTime(10100), f.db, executeTx(requestID))
	assert.Nil(t, err)

	var v Vault
	assert.Nil(t, NewVaultBucket().One(f.db, f.vaultID, &v))
	assert.Equal(t, newOwner.Address(), v.Owner)
}
