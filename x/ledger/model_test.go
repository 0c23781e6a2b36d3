package ledger

import (
	"testing"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/wardentest/assert"
)

func TestAccountValidate(t *testing.T) {
	cases := map[string]struct {
		account  *Account
		wantErrs map[string]*errors.Error
	}{
		"all good": {
			account: &Account{
				Metadata: &warden.Metadata{Schema: 1},
				Coins:    coin.Coins{coin.NewCoinp(10, 0, "IOV")},
			},
			wantErrs: map[string]*errors.Error{
				"Metadata": nil,
				"Coins":    nil,
			},
		},
		"empty account is fine": {
			account: &Account{
				Metadata: &warden.Metadata{Schema: 1},
			},
			wantErrs: map[string]*errors.Error{
				"Metadata": nil,
				"Coins":    nil,
			},
		},
		"missing metadata": {
			account: &Account{
				Coins: coin.Coins{coin.NewCoinp(10, 0, "IOV")},
			},
			wantErrs: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
			},
		},
		"negative balance": {
			account: &Account{
				Metadata: &warden.Metadata{Schema: 1},
				Coins:    coin.Coins{coin.NewCoinp(-10, 0, "IOV")},
			},
			wantErrs: map[string]*errors.Error{
				"Coins": errors.ErrAmount,
			},
		},
		"invalid currency": {
			account: &Account{
				Metadata: &warden.Metadata{Schema: 1},
				Coins:    coin.Coins{coin.NewCoinp(10, 0, "this-is-not-a-ticker")},
			},
			wantErrs: map[string]*errors.Error{
				"Coins": errors.ErrCurrency,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.account.Validate()
			for field, wantErr := range tc.wantErrs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}
