package safemode

import (
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
)

func init() {
	migration.MustRegister(1, &Status{}, migration.NoModification)
	migration.MustRegister(1, &ToggleRecord{}, migration.NoModification)
}

var _ orm.CloneableData = (*Status)(nil)

func (s *Status) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	if len(s.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	if s.Since == 0 {
		errs = errors.Append(errs,
			errors.Field("Since", errors.ErrEmpty, "toggle time is required"))
	}
	return errs
}

func (s *Status) Copy() orm.CloneableData {
	cpy := *s
	cpy.Metadata = s.Metadata.Copy()
	cpy.VaultID = append([]byte(nil), s.VaultID...)
	return &cpy
}

var _ orm.CloneableData = (*ToggleRecord)(nil)

func (r *ToggleRecord) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	if len(r.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	errs = errors.AppendField(errs, "Actor", r.Actor.Validate())
	if r.At == 0 {
		errs = errors.Append(errs,
			errors.Field("At", errors.ErrEmpty, "toggle time is required"))
	}
	return errs
}

func (r *ToggleRecord) Copy() orm.CloneableData {
	cpy := *r
	cpy.Metadata = r.Metadata.Copy()
	cpy.VaultID = append([]byte(nil), r.VaultID...)
	cpy.Actor = append([]byte(nil), r.Actor...)
	return &cpy
}

// NewStatusBucket returns a bucket for the per-vault safe mode flag,
// keyed by the vault ID.
func NewStatusBucket() orm.ModelBucket {
	b := orm.NewModelBucket("safe", &Status{})
	return migration.NewModelBucket("safemode", b)
}

// NewHistoryBucket returns a bucket for toggle history entries, keyed
// by the vault ID followed by the big endian toggle sequence so entries
// of one vault iterate in order.
func NewHistoryBucket() orm.ModelBucket {
	b := orm.NewModelBucket("safehist", &ToggleRecord{})
	return migration.NewModelBucket("safemode", b)
}
