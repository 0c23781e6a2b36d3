package vault

import (
	"testing"
	"time"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/store"
	"github.com/warden-one/warden/wardentest"
	"github.com/warden-one/warden/wardentest/assert"
	"github.com/warden-one/warden/x/guardian"
)

func TestPolicyBookVersioning(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "vault")

	book := NewPolicyBook()
	vaultID := []byte{0, 0, 0, 0, 0, 0, 0, 1}

	if _, err := book.Latest(db, vaultID); !errors.ErrNotFound.Is(err) {
		t.Fatalf("latest of an unknown vault: %+v", err)
	}

	first, err := book.Append(db, vaultID, []*Rule{withdrawalRule()})
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), first.Version)

	tightened := withdrawalRule()
	tightened.Quorum = 5
	second, err := book.Append(db, vaultID, []*Rule{tightened})
	assert.Nil(t, err)
	assert.Equal(t, uint32(2), second.Version)

	latest, err := book.Latest(db, vaultID)
	assert.Nil(t, err)
	assert.Equal(t, uint32(2), latest.Version)
	assert.Equal(t, uint32(5), latest.Rule(KindWithdrawal).Quorum)

	// The superseded version is still stored, the record is append
	// only.
	old, err := book.Version(db, vaultID, 1)
	assert.Nil(t, err)
	assert.Equal(t, uint32(2), old.Rule(KindWithdrawal).Quorum)

	// The versioned store refuses to overwrite a stored version.
	stale := Policy{
		Metadata: &warden.Metadata{Schema: 1},
		VaultID:  vaultID,
		Version:  1,
		Rules:    []*Rule{withdrawalRule()},
	}
	if _, err := book.policies.Update(db, vaultID, &stale); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("overwriting version 2: %+v", err)
	}
}

func TestPolicyBookHighestQuorum(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "vault")

	book := NewPolicyBook()

	// Only the latest version per vault counts: vault A tightened to
	// 4 and back down to 2, vault B sits at 3. Emergency override
	// quorums are a different guardian pool and must be ignored.
	vaultA := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	vaultB := []byte{0, 0, 0, 0, 0, 0, 0, 2}

	quorum := func(n uint32) []*Rule {
		r := withdrawalRule()
		r.Quorum = n
		return []*Rule{r}
	}
	for _, rules := range [][]*Rule{quorum(1), quorum(4), quorum(2)} {
		if _, err := book.Append(db, vaultA, rules); err != nil {
			t.Fatalf("cannot append: %+v", err)
		}
	}
	rules := quorum(3)
	em := emergencyRule()
	em.OverrideQuorum = 9
	rules = append(rules, em)
	if _, err := book.Append(db, vaultB, rules); err != nil {
		t.Fatalf("cannot append: %+v", err)
	}

	highest, err := book.HighestQuorum(db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(3), highest)
}

func TestOwnersLookup(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "vault")

	owner := wardentest.NewCondition()
	vaultID, err := NewVaultBucket().Put(db, nil, &Vault{
		Metadata:  &warden.Metadata{Schema: 1},
		Owner:     owner.Address(),
		CreatedAt: 1,
	})
	assert.Nil(t, err)

	owners := NewOwners()
	got, err := owners.VaultOwner(db, vaultID)
	assert.Nil(t, err)
	assert.Equal(t, owner.Address(), got)

	if _, err := owners.VaultOwner(db, []byte{9, 9, 9, 9, 9, 9, 9, 9}); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unknown vault: %+v", err)
	}
}

func TestValidatePolicyRulesBounds(t *testing.T) {
	short := withdrawalRule()
	short.VotingPeriod = warden.AsUnixDuration(time.Second)

	greedy := withdrawalRule()
	greedy.Quorum = 3

	cases := map[string]struct {
		rules   []*Rule
		wantErr *errors.Error
	}{
		"within bounds": {
			rules: []*Rule{withdrawalRule()},
		},
		"voting period below the minimum": {
			rules:   []*Rule{short},
			wantErr: errors.ErrInput,
		},
		"quorum above the active guardian count": {
			rules:   []*Rule{greedy},
			wantErr: guardian.ErrQuorum,
		},
	}

	var (
		alice = wardentest.NewCondition()
		bob   = wardentest.NewCondition()
	)
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, []*Rule{withdrawalRule()}, map[string]guardian.Role{
				string(alice.Address()): guardian.RoleRegular,
				string(bob.Address()):   guardian.RoleRegular,
			})
			err := validatePolicyRules(f.db, guardian.NewDirectory(), tc.rules, 10000)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
