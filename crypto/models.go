package crypto

import (
	"github.com/warden-one/warden/codec"
)

// PublicKey is a serializable public key. Only the ed25519 curve is
// supported for transaction authentication.
type PublicKey struct {
	Ed25519 []byte
}

func (p *PublicKey) GetEd25519() []byte {
	if p == nil {
		return nil
	}
	return p.Ed25519
}

func (p *PublicKey) Marshal() ([]byte, error) {
	return codec.Marshal(p)
}

func (p *PublicKey) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, p)
}

// PrivateKey is a serializable private key. Keep instances out of any
// persistent store, they belong to clients and test fixtures only.
type PrivateKey struct {
	Ed25519 []byte
}

func (k *PrivateKey) GetEd25519() []byte {
	if k == nil {
		return nil
	}
	return k.Ed25519
}

func (k *PrivateKey) Marshal() ([]byte, error) {
	return codec.Marshal(k)
}

func (k *PrivateKey) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, k)
}

// Signature is a detached signature created with a private key.
type Signature struct {
	Ed25519 []byte
}

func (s *Signature) GetEd25519() []byte {
	if s == nil {
		return nil
	}
	return s.Ed25519
}

func (s *Signature) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Signature) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, s)
}
