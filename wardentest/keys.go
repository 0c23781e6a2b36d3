package wardentest

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/crypto"
)

func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

func NewCondition() warden.Condition {
	return NewKey().PublicKey().Condition()
}
