package sigs

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/crypto"
)

// UserData is the authentication state stored for a single public key. One
// entity is persisted per key that was ever used to sign a transaction.
type UserData struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Pubkey is the public key that all signatures of this user are
	// verified against.
	Pubkey *crypto.PublicKey `json:"pubkey"`
	// Sequence is a strictly increasing counter of the transactions
	// signed by this user. The signed value must match the current
	// state, which prevents replaying an old transaction.
	Sequence int64 `json:"sequence"`
}

func (u *UserData) GetMetadata() *warden.Metadata {
	return u.Metadata
}

func (u *UserData) Marshal() ([]byte, error) {
	return codec.Marshal(u)
}

func (u *UserData) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, u)
}

// StdSignature binds a signature to the sequence value it was created for.
// The public key is included so that a signature of a user not seen before
// can be verified as well.
type StdSignature struct {
	Sequence  int64             `json:"sequence"`
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
}

func (s *StdSignature) GetSequence() int64 {
	if s == nil {
		return 0
	}
	return s.Sequence
}

func (s *StdSignature) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *StdSignature) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, s)
}

// BumpSequenceMsg is a request to increment the sequence of a user without
// any other effect. It invalidates all transactions signed with a lower
// sequence value.
type BumpSequenceMsg struct {
	Metadata *warden.Metadata `json:"metadata"`
	// User is the address of the user whose sequence is incremented. The
	// transaction must be authorized by this user.
	User warden.Address `json:"user"`
	// Increment is the value that the sequence is increased by.
	Increment uint32 `json:"increment"`
}

func (msg *BumpSequenceMsg) GetMetadata() *warden.Metadata {
	return msg.Metadata
}

func (msg *BumpSequenceMsg) Marshal() ([]byte, error) {
	return codec.Marshal(msg)
}

func (msg *BumpSequenceMsg) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, msg)
}
