package safemode

import (
	"encoding/binary"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/orm"
)

// Controller is the functionality the vault executor needs from this
// package. It is implemented by BaseController and can be mocked in
// tests.
type Controller interface {
	// Enabled returns whether safe mode is enabled for the vault.
	// A vault without a status record is not in safe mode.
	Enabled(db warden.ReadOnlyKVStore, vaultID []byte) (bool, error)

	// Clear disables safe mode, appending a history entry. Clearing a
	// vault that is not in safe mode is a no-op, so an emergency
	// unlock can always run it.
	Clear(db warden.KVStore, vaultID []byte, actor warden.Address, reason string, now warden.UnixTime) error
}

// BaseController implements the Controller interface on top of the
// status and history buckets.
type BaseController struct {
	status  orm.ModelBucket
	history orm.ModelBucket
	seq     orm.Sequence
}

var _ Controller = (*BaseController)(nil)

// NewController returns a controller using the default buckets.
func NewController() *BaseController {
	return &BaseController{
		status:  NewStatusBucket(),
		history: NewHistoryBucket(),
		seq:     orm.NewSequence("safemode", "toggle"),
	}
}

// Enabled returns the current safe mode flag of the vault.
func (c *BaseController) Enabled(db warden.ReadOnlyKVStore, vaultID []byte) (bool, error) {
	var s Status
	switch err := c.status.One(db, vaultID, &s); {
	case errors.ErrNotFound.Is(err):
		return false, nil
	case err != nil:
		return false, errors.Wrap(err, "load status")
	}
	return s.Enabled, nil
}

// Toggle flips the safe mode flag. Setting the flag to its current
// value fails with ErrState so the history never fills with no-op
// entries.
func (c *BaseController) Toggle(db warden.KVStore, vaultID []byte, enabled bool, actor warden.Address, reason string, now warden.UnixTime) error {
	current, err := c.Enabled(db, vaultID)
	if err != nil {
		return err
	}
	if current == enabled {
		return errors.Wrapf(errors.ErrState, "safe mode already %s", onOff(enabled))
	}
	return c.write(db, vaultID, enabled, actor, reason, now)
}

// Clear disables safe mode if it is enabled.
func (c *BaseController) Clear(db warden.KVStore, vaultID []byte, actor warden.Address, reason string, now warden.UnixTime) error {
	current, err := c.Enabled(db, vaultID)
	if err != nil {
		return err
	}
	if !current {
		return nil
	}
	return c.write(db, vaultID, false, actor, reason, now)
}

func (c *BaseController) write(db warden.KVStore, vaultID []byte, enabled bool, actor warden.Address, reason string, now warden.UnixTime) error {
	s := Status{
		Metadata: &warden.Metadata{Schema: 1},
		VaultID:  vaultID,
		Enabled:  enabled,
		Reason:   reason,
		Since:    now,
	}
	if _, err := c.status.Put(db, vaultID, &s); err != nil {
		return errors.Wrap(err, "store status")
	}

	seq, err := c.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "toggle sequence")
	}
	rec := ToggleRecord{
		Metadata: &warden.Metadata{Schema: 1},
		VaultID:  vaultID,
		Seq:      uint64(seq),
		Enabled:  enabled,
		Reason:   reason,
		Actor:    actor,
		At:       now,
	}
	if _, err := c.history.Put(db, historyKey(vaultID, uint64(seq)), &rec); err != nil {
		return errors.Wrap(err, "store history")
	}
	return nil
}

func historyKey(vaultID []byte, seq uint64) []byte {
	key := make([]byte, 0, len(vaultID)+8)
	key = append(key, vaultID...)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, seq)
	return append(key, raw...)
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
