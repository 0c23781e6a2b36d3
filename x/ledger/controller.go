package ledger

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
)

// Controller is the functionality other extensions need to move funds
// around. It is implemented by BaseController and can be mocked in
// tests.
type Controller interface {
	// MoveCoins transfers the given amount from the source to the
	// destination account. It fails with ErrAmount if the source does
	// not hold enough funds.
	MoveCoins(db warden.KVStore, src warden.Address, dest warden.Address, amount coin.Coin) error

	// Balance returns the funds held by the given address. It fails
	// with ErrNotFound if no account exists for that address.
	Balance(db warden.ReadOnlyKVStore, addr warden.Address) (coin.Coins, error)
}

// BaseController implements the Controller interface on top of an
// account bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the given bucket for
// account storage.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// MoveCoins transfers funds between two accounts. The destination
// account is created if it does not exist yet. The source account is
// kept around even when drained to zero, so its metadata survives.
func (c BaseController) MoveCoins(db warden.KVStore, src warden.Address, dest warden.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive transfer: %s", amount)
	}

	var sender Account
	switch err := c.bucket.One(db, src, &sender); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrEmpty, "source account %s", src)
	case err != nil:
		return errors.Wrap(err, "load source account")
	}
	if !coin.Coins(sender.Coins).Contains(amount) {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %s", amount)
	}
	remains, err := coin.Coins(sender.Coins).Subtract(amount)
	if err != nil {
		return errors.Wrap(err, "withdraw")
	}
	sender.Coins = remains
	if _, err := c.bucket.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "store source account")
	}

	var receiver Account
	switch err := c.bucket.One(db, dest, &receiver); {
	case errors.ErrNotFound.Is(err):
		receiver = Account{Metadata: &warden.Metadata{Schema: 1}}
	case err != nil:
		return errors.Wrap(err, "load destination account")
	}
	funds, err := coin.Coins(receiver.Coins).Add(amount)
	if err != nil {
		return errors.Wrap(err, "deposit")
	}
	receiver.Coins = funds
	if _, err := c.bucket.Put(db, dest, &receiver); err != nil {
		return errors.Wrap(err, "store destination account")
	}
	return nil
}

// Balance returns all funds stored under the given address.
func (c BaseController) Balance(db warden.ReadOnlyKVStore, addr warden.Address) (coin.Coins, error) {
	var acct Account
	if err := c.bucket.One(db, addr, &acct); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return acct.Coins, nil
}

// IssueCoins credits the given account with new funds. It is used
// during the genesis initialization and in tests. There is no message
// that can mint within a running chain.
func (c BaseController) IssueCoins(db warden.KVStore, addr warden.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if amount.IsZero() {
		return nil
	}

	var acct Account
	switch err := c.bucket.One(db, addr, &acct); {
	case errors.ErrNotFound.Is(err):
		acct = Account{Metadata: &warden.Metadata{Schema: 1}}
	case err != nil:
		return errors.Wrap(err, "load account")
	}
	funds, err := coin.Coins(acct.Coins).Add(amount)
	if err != nil {
		return errors.Wrap(err, "issue")
	}
	acct.Coins = funds
	if _, err := c.bucket.Put(db, addr, &acct); err != nil {
		return errors.Wrap(err, "store account")
	}
	return nil
}
