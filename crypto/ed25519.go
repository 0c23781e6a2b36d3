package crypto

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"golang.org/x/crypto/ed25519"
)

var _ PubKey = (*PublicKey)(nil)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if len(p.GetEd25519()) != ed25519.PublicKeySize {
		return false
	}
	raw := sig.GetEd25519()
	if len(raw) == 0 {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, raw)
}

// Condition encodes the public key into a condition that the signature
// decorator will hand out once a transaction signature checks out.
func (p *PublicKey) Condition() warden.Condition {
	raw := p.GetEd25519()
	if len(raw) == 0 {
		return nil
	}
	return warden.NewCondition(ExtensionName, "ed25519", raw)
}

// Address is a shortcut for Condition().Address()
func (p *PublicKey) Address() warden.Address {
	return p.Condition().Address()
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (k *PrivateKey) Sign(message []byte) (*Signature, error) {
	if l := len(k.GetEd25519()); l != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid key size: %d", l)
	}
	bz := ed25519.Sign(ed25519.PrivateKey(k.Ed25519), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (k *PrivateKey) PublicKey() *PublicKey {
	priv := ed25519.PrivateKey(k.Ed25519)
	pub := priv.Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	priv := ed25519.NewKeyFromSeed(seed)
	return &PrivateKey{Ed25519: priv}
}
