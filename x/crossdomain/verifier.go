package crossdomain

import (
	"bytes"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
	merkleproof "github.com/transparency-dev/merkle/proof"
	"github.com/transparency-dev/merkle/rfc6962"
)

// Verifier is the functionality the vault extension needs to accept a
// cross-domain guardian vote. It is implemented by BaseVerifier and can
// be mocked in tests.
type Verifier interface {
	// VerifyMembership returns nil if the proof attests that the
	// given address is a guardian of the proof's domain, according to
	// the currently trusted, sufficiently fresh membership snapshot.
	// Verification failure is ErrProof and must not be retried
	// without a freshly confirmed snapshot. A stale snapshot or a
	// proof built against an outdated one is ErrTiming.
	VerifyMembership(db warden.ReadOnlyKVStore, addr warden.Address, proof *MembershipProof, now warden.UnixTime) error
}

// BaseVerifier implements the Verifier interface on top of the
// snapshot bucket.
type BaseVerifier struct {
	snapshots orm.ModelBucket
}

var _ Verifier = BaseVerifier{}

// NewVerifier returns a verifier using the default snapshot bucket.
func NewVerifier() BaseVerifier {
	return BaseVerifier{snapshots: NewSnapshotBucket()}
}

func (v BaseVerifier) VerifyMembership(db warden.ReadOnlyKVStore, addr warden.Address, proof *MembershipProof, now warden.UnixTime) error {
	if proof == nil {
		return errors.Wrap(errors.ErrEmpty, "proof is required")
	}
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	var snap Snapshot
	if err := v.snapshots.One(db, []byte(proof.DomainID), &snap); err != nil {
		return errors.Wrapf(err, "trusted snapshot for %q", proof.DomainID)
	}
	if !bytes.Equal(proof.Root, snap.Root) {
		return errors.Wrap(errors.ErrProof, "root is not the trusted snapshot root")
	}
	if proof.SnapshotAt != snap.ObservedAt {
		return errors.Wrap(errors.ErrTiming, "proof built against an outdated snapshot")
	}
	if proof.LeafCount != snap.LeafCount {
		return errors.Wrap(errors.ErrProof, "leaf count differs from the trusted snapshot")
	}
	if now > snap.ObservedAt.Add(conf.FreshnessBound.Duration()) {
		return errors.Wrap(errors.ErrTiming, "trusted snapshot exceeds the freshness bound")
	}
	if !warden.Address(proof.Leaf).Equals(addr) {
		return errors.Wrap(errors.ErrUnauthorized, "proof leaf is not this guardian")
	}
	h := rfc6962.DefaultHasher
	if err := merkleproof.VerifyInclusion(h, proof.LeafIndex, proof.LeafCount, h.HashLeaf(proof.Leaf), proof.Path, snap.Root); err != nil {
		return errors.Wrap(errors.ErrProof, err.Error())
	}
	return nil
}
