package guardian

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
)

// GenesisGuardian is the guardian declaration format used in the
// genesis file. Genesis guardians are active from the first block, the
// activation delay applies only to registrations within a running
// chain.
type GenesisGuardian struct {
	Address   warden.Address  `json:"address"`
	Role      Role            `json:"role"`
	ExpiresAt warden.UnixTime `json:"expires_at,omitempty"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ warden.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial guardians and the package
// configuration from the genesis and persist them in the database.
func (*Initializer) FromGenesis(opts warden.Options, db warden.KVStore) error {
	if err := gconf.InitConfig(db, opts, "guardian", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var guardians []GenesisGuardian
	if err := opts.ReadOptions("guardian", &guardians); err != nil {
		return errors.Wrap(err, "read guardian options")
	}
	bucket := NewGuardianBucket()
	for i, gg := range guardians {
		g := Guardian{
			Metadata:     &warden.Metadata{Schema: 1},
			Address:      gg.Address,
			Role:         gg.Role,
			Status:       StatusPending,
			RegisteredAt: 1,
			ActivatedAt:  1,
			ExpiresAt:    gg.ExpiresAt,
		}
		if err := g.Validate(); err != nil {
			return errors.Wrapf(err, "guardian #%d", i)
		}
		if _, err := bucket.Put(db, gg.Address, &g); err != nil {
			return errors.Wrapf(err, "store guardian #%d", i)
		}
	}
	return nil
}
