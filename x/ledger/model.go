package ledger

import (
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
)

func init() {
	migration.MustRegister(1, &Account{}, migration.NoModification)
}

var _ orm.CloneableData = (*Account)(nil)

// Validate ensures the account is sane. An account must never hold a
// negative balance.
func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", a.Metadata.Validate())
	coins := coin.Coins(a.Coins)
	errs = errors.AppendField(errs, "Coins", coins.Validate())
	if !coins.IsNonNegative() {
		errs = errors.Append(errs,
			errors.Field("Coins", errors.ErrAmount, "negative balance"))
	}
	return errs
}

// Copy produces a deep duplicate of this account.
func (a *Account) Copy() orm.CloneableData {
	return &Account{
		Metadata: a.Metadata.Copy(),
		Coins:    coin.Coins(a.Coins).Clone(),
	}
}

// NewAccountBucket returns a bucket for keeping track of accounts,
// keyed by the owner address.
func NewAccountBucket() orm.ModelBucket {
	b := orm.NewModelBucket("acct", &Account{})
	return migration.NewModelBucket("ledger", b)
}
