package ledger

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
)

// GenesisAccount is the account format used in the genesis file.
type GenesisAccount struct {
	Address warden.Address `json:"address"`
	Coins   coin.Coins     `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ warden.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account balances from the genesis and
// persist them in the database.
func (*Initializer) FromGenesis(opts warden.Options, db warden.KVStore) error {
	var accounts []GenesisAccount
	if err := opts.ReadOptions("ledger", &accounts); err != nil {
		return errors.Wrap(err, "read ledger options")
	}
	control := NewController(NewAccountBucket())
	for i, a := range accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d address", i)
		}
		for _, c := range a.Coins {
			if c == nil {
				return errors.Wrapf(errors.ErrAmount, "account #%d: nil coin", i)
			}
			if err := control.IssueCoins(db, a.Address, *c); err != nil {
				return errors.Wrapf(err, "account #%d: issue %s", i, c)
			}
		}
	}
	return nil
}
