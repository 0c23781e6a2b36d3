package sigs

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/wardentest"
)

//----- mock objects for testing...

// StdTx is a test transaction that can carry signatures.
type StdTx struct {
	warden.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ warden.Tx = (*StdTx)(nil)

// NewStdTx wraps a transaction around a message with the given serialized
// representation.
func NewStdTx(payload []byte) *StdTx {
	return &StdTx{
		Tx: &wardentest.Tx{
			Msg: &wardentest.Msg{Serialized: payload},
		},
	}
}

func (tx StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx StdTx) GetSignBytes() ([]byte, error) {
	// marshal self w/o sigs
	s := tx.Signatures
	tx.Signatures = nil
	defer func() { tx.Signatures = s }()

	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}
