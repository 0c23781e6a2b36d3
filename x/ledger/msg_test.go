package ledger

import (
	"strings"
	"testing"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/coin"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/wardentest"
	"github.com/warden-one/warden/wardentest/assert"
)

func TestValidateSendMsg(t *testing.T) {
	var (
		src  = wardentest.NewCondition().Address()
		dest = wardentest.NewCondition().Address()
	)

	cases := map[string]struct {
		msg      *SendMsg
		wantErrs map[string]*errors.Error
	}{
		"all good": {
			msg: &SendMsg{
				Metadata:    &warden.Metadata{Schema: 1},
				Source:      src,
				Destination: dest,
				Amount:      coin.NewCoinp(10, 0, "IOV"),
				Memo:        "rent",
			},
			wantErrs: map[string]*errors.Error{
				"Metadata":    nil,
				"Source":      nil,
				"Destination": nil,
				"Amount":      nil,
				"Memo":        nil,
			},
		},
		"missing metadata": {
			msg: &SendMsg{
				Source:      src,
				Destination: dest,
				Amount:      coin.NewCoinp(10, 0, "IOV"),
			},
			wantErrs: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
			},
		},
		"missing amount": {
			msg: &SendMsg{
				Metadata:    &warden.Metadata{Schema: 1},
				Source:      src,
				Destination: dest,
			},
			wantErrs: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"negative amount": {
			msg: &SendMsg{
				Metadata:    &warden.Metadata{Schema: 1},
				Source:      src,
				Destination: dest,
				Amount:      coin.NewCoinp(-10, 0, "IOV"),
			},
			wantErrs: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"missing addresses": {
			msg: &SendMsg{
				Metadata: &warden.Metadata{Schema: 1},
				Amount:   coin.NewCoinp(10, 0, "IOV"),
			},
			wantErrs: map[string]*errors.Error{
				"Source":      errors.ErrEmpty,
				"Destination": errors.ErrEmpty,
			},
		},
		"huge memo": {
			msg: &SendMsg{
				Metadata:    &warden.Metadata{Schema: 1},
				Source:      src,
				Destination: dest,
				Amount:      coin.NewCoinp(10, 0, "IOV"),
				Memo:        strings.Repeat("x", maxMemoSize+1),
			},
			wantErrs: map[string]*errors.Error{
				"Memo": errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			for field, wantErr := range tc.wantErrs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}
