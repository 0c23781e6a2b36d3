package crossdomain

import (
	"github.com/warden-one/warden/errors"
	"github.com/transparency-dev/merkle/rfc6962"
)

// MembershipRoot computes the RFC 6962 Merkle root over the given
// leaves. Leaves are guardian addresses in the order the source domain
// published them.
func MembershipRoot(leaves [][]byte) []byte {
	return subtreeRoot(leaves)
}

// BuildProof returns the RFC 6962 inclusion proof for the leaf at the
// given index. Used by relayers and tests, verification happens through
// the Verifier.
func BuildProof(leaves [][]byte, index uint64) ([][]byte, error) {
	if index >= uint64(len(leaves)) {
		return nil, errors.Wrapf(errors.ErrInput, "leaf index %d out of %d", index, len(leaves))
	}
	return subtreeProof(leaves, index), nil
}

func subtreeRoot(leaves [][]byte) []byte {
	h := rfc6962.DefaultHasher
	switch n := len(leaves); n {
	case 0:
		return h.EmptyRoot()
	case 1:
		return h.HashLeaf(leaves[0])
	default:
		k := split(n)
		return h.HashChildren(subtreeRoot(leaves[:k]), subtreeRoot(leaves[k:]))
	}
}

func subtreeProof(leaves [][]byte, index uint64) [][]byte {
	if len(leaves) <= 1 {
		return nil
	}
	k := uint64(split(len(leaves)))
	if index < k {
		return append(subtreeProof(leaves[:k], index), subtreeRoot(leaves[k:]))
	}
	return append(subtreeProof(leaves[k:], index-k), subtreeRoot(leaves[:k]))
}

// split returns the size of the left subtree for n leaves: the largest
// power of two strictly smaller than n.
func split(n int) int {
	k := 1
	for k<<1 < n {
		k <<= 1
	}
	return k
}
