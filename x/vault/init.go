package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
)

// GenesisVault is the vault declaration format used in the genesis
// file. Each entry creates a vault and its first policy version.
type GenesisVault struct {
	Owner warden.Address `json:"owner"`
	Rules []*Rule        `json:"rules"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ warden.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial vaults and the package configuration
// from the genesis and persist them in the database.
func (*Initializer) FromGenesis(opts warden.Options, db warden.KVStore) error {
	if err := gconf.InitConfig(db, opts, "vault", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var vaults []GenesisVault
	if err := opts.ReadOptions("vault", &vaults); err != nil {
		return errors.Wrap(err, "read vault options")
	}
	bucket := NewVaultBucket()
	book := NewPolicyBook()
	for i, gv := range vaults {
		v := Vault{
			Metadata:  &warden.Metadata{Schema: 1},
			Owner:     gv.Owner,
			CreatedAt: 1,
		}
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "vault #%d", i)
		}
		vaultID, err := bucket.Put(db, nil, &v)
		if err != nil {
			return errors.Wrapf(err, "store vault #%d", i)
		}
		if _, err := book.Append(db, vaultID, gv.Rules); err != nil {
			return errors.Wrapf(err, "vault #%d policy", i)
		}
	}
	return nil
}
