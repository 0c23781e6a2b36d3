package ledger

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/coin"
)

// Account holds the funds owned by a single address. The account is
// stored under the owner address, so the owner is not repeated in the
// model itself.
type Account struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Coins is the set of funds, normalized to at most one entry per
	// currency ticker.
	Coins []*coin.Coin `json:"coins,omitempty"`
}

func (a *Account) GetMetadata() *warden.Metadata {
	return a.Metadata
}

func (a *Account) Marshal() ([]byte, error) {
	return codec.Marshal(a)
}

func (a *Account) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, a)
}

// SendMsg moves funds between two accounts.
type SendMsg struct {
	Metadata    *warden.Metadata `json:"metadata"`
	Source      warden.Address   `json:"source"`
	Destination warden.Address   `json:"destination"`
	Amount      *coin.Coin       `json:"amount"`
	// Memo is a human readable note attached to the transfer.
	Memo string `json:"memo,omitempty"`
}

func (m *SendMsg) GetMetadata() *warden.Metadata {
	return m.Metadata
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *SendMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, m)
}
