package guardian

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
)

// Directory exposes the only membership facts other extensions may
// consult: whether an address is an active guardian at a given moment
// and how many guardians of a role are active. All other record details
// stay private to this package.
type Directory struct {
	bucket orm.ModelBucket
}

// NewDirectory returns a directory reading from the default guardian
// bucket.
func NewDirectory() Directory {
	return Directory{bucket: NewGuardianBucket()}
}

// IsActive returns true if the given address belongs to a guardian that
// is active at the given time. A pending record whose activation delay
// matured is observed active without any extra transition, and a record
// past its expiration is observed inactive the same way.
func (d Directory) IsActive(db warden.ReadOnlyKVStore, addr warden.Address, asOf warden.UnixTime) (bool, error) {
	g, err := d.guardian(db, addr)
	switch {
	case errors.ErrNotFound.Is(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return effectiveStatus(g, asOf) == StatusActive, nil
}

// Role returns the role of the guardian registered under the given
// address. It fails with ErrNotFound for unknown addresses.
func (d Directory) Role(db warden.ReadOnlyKVStore, addr warden.Address) (Role, error) {
	g, err := d.guardian(db, addr)
	if err != nil {
		return RoleInvalid, err
	}
	return g.Role, nil
}

// ActiveCount returns how many guardians of the given role are active
// at the given time.
func (d Directory) ActiveCount(db warden.ReadOnlyKVStore, role Role, asOf warden.UnixTime) (uint32, error) {
	var guardians []Guardian
	if _, err := d.bucket.ByIndex(db, "role", []byte{byte(role)}, &guardians); err != nil {
		return 0, errors.Wrap(err, "guardians by role")
	}
	var cnt uint32
	for i := range guardians {
		if effectiveStatus(&guardians[i], asOf) == StatusActive {
			cnt++
		}
	}
	return cnt, nil
}

func (d Directory) guardian(db warden.ReadOnlyKVStore, addr warden.Address) (*Guardian, error) {
	var g Guardian
	if err := d.bucket.One(db, addr, &g); err != nil {
		return nil, errors.Wrapf(err, "guardian %s", addr)
	}
	return &g, nil
}

// effectiveStatus projects the persisted record onto the clock. Only
// terminal transitions are persisted, activation and expiry are lazy.
func effectiveStatus(g *Guardian, asOf warden.UnixTime) Status {
	switch g.Status {
	case StatusExpired, StatusRevoked:
		return g.Status
	}
	if g.ExpiresAt != 0 && asOf >= g.ExpiresAt {
		return StatusExpired
	}
	if asOf >= g.ActivatedAt {
		return StatusActive
	}
	return StatusPending
}
