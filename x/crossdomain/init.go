package crossdomain

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
)

// GenesisSnapshot is the trusted snapshot format used in the genesis
// file. Genesis snapshots skip the relayer quorum, they are trusted by
// construction.
type GenesisSnapshot struct {
	DomainID   string          `json:"domain_id"`
	Root       []byte          `json:"root"`
	LeafCount  uint64          `json:"leaf_count"`
	ObservedAt warden.UnixTime `json:"observed_at"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ warden.Initializer = (*Initializer)(nil)

// FromGenesis will parse the package configuration and any initial
// trusted snapshots from the genesis and persist them in the database.
func (*Initializer) FromGenesis(opts warden.Options, db warden.KVStore) error {
	if err := gconf.InitConfig(db, opts, "crossdomain", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var snapshots []GenesisSnapshot
	if err := opts.ReadOptions("crossdomain", &snapshots); err != nil {
		return errors.Wrap(err, "read crossdomain options")
	}
	bucket := NewSnapshotBucket()
	for i, gs := range snapshots {
		snap := Snapshot{
			Metadata:   &warden.Metadata{Schema: 1},
			DomainID:   gs.DomainID,
			Root:       gs.Root,
			LeafCount:  gs.LeafCount,
			ObservedAt: gs.ObservedAt,
			TrustedAt:  1,
		}
		if err := snap.Validate(); err != nil {
			return errors.Wrapf(err, "snapshot #%d", i)
		}
		if _, err := bucket.Put(db, []byte(gs.DomainID), &snap); err != nil {
			return errors.Wrapf(err, "store snapshot #%d", i)
		}
	}
	return nil
}
