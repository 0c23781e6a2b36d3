// Package sigpack implements a compact batch encoding for recoverable
// secp256k1 signatures.
//
// Approval signatures are collected off band and submitted in bulk. To keep
// the transaction payload small each 65 byte recoverable signature is packed
// into 64 bytes by folding its one bit of recovery information into the top
// bit of the S value. That bit is unused because only canonical (low S)
// signatures are accepted. Signer identity is never transmitted, it is
// recovered from the signature itself.
package sigpack

import (
	"crypto/sha256"
	"math/big"

	"github.com/btcsuite/btcd/btcec"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
)

const (
	// compactSigLen is the length of a recoverable signature as created by
	// btcec.SignCompact: one header byte followed by R and S, 32 bytes
	// each.
	compactSigLen = 65

	// packedSigLen is the length of a single packed signature: R followed
	// by S with the recovery bit folded into the top bit of S.
	packedSigLen = 64

	// compressedHeader is the header byte of a compact signature with
	// recovery code zero, created over a compressed public key.
	compressedHeader = 27 + 4
)

// halfOrder is half of the secp256k1 group order. A canonical signature
// carries an S value of at most halfOrder, so the top bit of a serialized S
// is always zero.
var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// Pack encodes a list of 65 byte recoverable signatures into a single batch,
// 64 bytes per signature. Only signatures over compressed public keys with a
// canonical S value and a one bit recovery code are accepted. Pack and
// Unpack are exact inverses of each other.
func Pack(sigs [][]byte) ([]byte, error) {
	packed := make([]byte, 0, len(sigs)*packedSigLen)
	for i, sig := range sigs {
		if len(sig) != compactSigLen {
			return nil, errors.Wrapf(errors.ErrInput, "signature %d: %d bytes, must be %d", i, len(sig), compactSigLen)
		}
		recovery := int(sig[0]) - compressedHeader
		if recovery < 0 {
			return nil, errors.Wrapf(errors.ErrInput, "signature %d: uncompressed key header %d", i, sig[0])
		}
		if recovery > 1 {
			return nil, errors.Wrapf(errors.ErrInput, "signature %d: unsupported recovery code %d", i, recovery)
		}
		s := new(big.Int).SetBytes(sig[33:])
		if s.Cmp(halfOrder) > 0 {
			return nil, errors.Wrapf(errors.ErrInput, "signature %d: non canonical S value", i)
		}
		packed = append(packed, sig[1:]...)
		if recovery == 1 {
			packed[len(packed)-32] |= 0x80
		}
	}
	return packed, nil
}

// Unpack decodes a batch created by Pack back into the original 65 byte
// recoverable signatures.
func Unpack(packed []byte) ([][]byte, error) {
	if len(packed)%packedSigLen != 0 {
		return nil, errors.Wrapf(errors.ErrInput, "packed length %d is not a multiple of %d", len(packed), packedSigLen)
	}
	sigs := make([][]byte, 0, len(packed)/packedSigLen)
	for off := 0; off < len(packed); off += packedSigLen {
		sig := make([]byte, compactSigLen)
		copy(sig[1:], packed[off:off+packedSigLen])
		sig[0] = compressedHeader + sig[33]>>7
		sig[33] &= 0x7f
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// SignerCondition returns the identity of a signer given its 33 byte
// compressed secp256k1 public key.
func SignerCondition(compressedPubKey []byte) warden.Condition {
	return warden.NewCondition("sigpack", "secp256k1", compressedPubKey)
}

// RecoverSigners returns the identity of every signer of a packed batch, in
// batch order. Every signature must recover against the given 32 byte
// digest.
func RecoverSigners(digest []byte, packed []byte) ([]warden.Condition, error) {
	if len(digest) != sha256.Size {
		return nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes", sha256.Size)
	}
	sigs, err := Unpack(packed)
	if err != nil {
		return nil, err
	}
	signers := make([]warden.Condition, 0, len(sigs))
	for i, sig := range sigs {
		pub, _, err := btcec.RecoverCompact(btcec.S256(), sig, digest)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrProof, "signature %d: %v", i, err)
		}
		signers = append(signers, SignerCondition(pub.SerializeCompressed()))
	}
	return signers, nil
}

// VerifySigners validates a packed batch against a digest and an allow
// predicate. It returns the identities of all valid, first seen and allowed
// signers in batch order, together with the batch indices of every dropped
// entry: signatures that do not recover, signers that are not allowed and
// repeated signatures of an already counted signer. A dropped entry is
// reported, never counted.
//
// An error is returned only for structural problems with the input, not for
// dropped entries.
func VerifySigners(digest []byte, packed []byte, allowed func(warden.Address) bool) ([]warden.Condition, []int, error) {
	if len(digest) != sha256.Size {
		return nil, nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes", sha256.Size)
	}
	sigs, err := Unpack(packed)
	if err != nil {
		return nil, nil, err
	}

	var (
		signers  []warden.Condition
		rejected []int
	)
	seen := make(map[string]bool, len(sigs))
	for i, sig := range sigs {
		pub, _, err := btcec.RecoverCompact(btcec.S256(), sig, digest)
		if err != nil {
			rejected = append(rejected, i)
			continue
		}
		cond := SignerCondition(pub.SerializeCompressed())
		addr := cond.Address()
		if seen[string(addr)] {
			rejected = append(rejected, i)
			continue
		}
		seen[string(addr)] = true
		if allowed != nil && !allowed(addr) {
			rejected = append(rejected, i)
			continue
		}
		signers = append(signers, cond)
	}
	return signers, rejected, nil
}
