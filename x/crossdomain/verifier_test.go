package crossdomain

import (
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

func TestVerifyMembership(t *testing.T) {
	var (
		g1       = wardentest.NewCondition().Address()
		g2       = wardentest.NewCondition().Address()
		stranger = wardentest.NewCondition().Address()
	)
	leaves := [][]byte{g1, g2}
	root := MembershipRoot(leaves)

	buildProof := func(leaf []byte, index uint64) *MembershipProof {
		path, err := BuildProof(leaves, index)
		assert.Nil(t, err)
		return &MembershipProof{
			DomainID:   "domain-9",
			Root:       root,
			Leaf:       leaf,
			LeafIndex:  index,
			LeafCount:  2,
			Path:       path,
			SnapshotAt: 5000,
		}
	}

	cases := map[string]struct {
		proof   func() *MembershipProof
		addr    warden.Address
		now     warden.UnixTime
		wantErr *errors.Error
	}{
		"valid proof": {
			proof: func() *MembershipProof { return buildProof(g1, 0) },
			addr:  g1,
			now:   6000,
		},
		"second leaf verifies too": {
			proof: func() *MembershipProof { return buildProof(g2, 1) },
			addr:  g2,
			now:   6000,
		},
		"tampered path": {
			proof: func() *MembershipProof {
				p := buildProof(g1, 0)
				p.Path[0][0] ^= 0x01
				return p
			},
			addr:    g1,
			now:     6000,
			wantErr: errors.ErrProof,
		},
		"untrusted root": {
			proof: func() *MembershipProof {
				p := buildProof(g1, 0)
				p.Root = MembershipRoot([][]byte{stranger})
				return p
			},
			addr:    g1,
			now:     6000,
			wantErr: errors.ErrProof,
		},
		"outdated snapshot reference": {
			proof: func() *MembershipProof {
				p := buildProof(g1, 0)
				p.SnapshotAt = 4000
				return p
			},
			addr:    g1,
			now:     6000,
			wantErr: errors.ErrTiming,
		},
		"snapshot beyond the freshness bound": {
			proof:   func() *MembershipProof { return buildProof(g1, 0) },
			addr:    g1,
			now:     5000 + 86401,
			wantErr: errors.ErrTiming,
		},
		"proof for another address": {
			proof:   func() *MembershipProof { return buildProof(g1, 0) },
			addr:    stranger,
			now:     6000,
			wantErr: errors.ErrUnauthorized,
		},
		"unknown domain": {
			proof: func() *MembershipProof {
				p := buildProof(g1, 0)
				p.DomainID = "domain-0"
				return p
			},
			addr:    g1,
			now:     6000,
			wantErr: errors.ErrNotFound,
		},
		"missing proof": {
			proof:   func() *MembershipProof { return nil },
			addr:    g1,
			now:     6000,
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "crossdomain")
			assert.Nil(t, gconf.Save(db, "crossdomain", &Configuration{
				Metadata:       &warden.Metadata{Schema: 1},
				Owner:          wardentest.NewCondition().Address(),
				Relayers:       []warden.Address{wardentest.NewCondition().Address()},
				RelayerQuorum:  1,
				FreshnessBound: warden.AsUnixDuration(24 * time.Hour),
				MessageTimeout: warden.AsUnixDuration(time.Hour),
			}))
			snap := Snapshot{
				Metadata:   &warden.Metadata{Schema: 1},
				DomainID:   "domain-9",
				Root:       root,
				LeafCount:  2,
				ObservedAt: 5000,
				TrustedAt:  5100,
			}
			_, err := NewSnapshotBucket().Put(db, []byte("domain-9"), &snap)
			assert.Nil(t, err)

			v := NewVerifier()
			if err := v.VerifyMembership(db, tc.addr, tc.proof(), tc.now); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
