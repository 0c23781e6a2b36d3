package safemode

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
)

func init() {
	migration.MustRegister(1, &ToggleMsg{}, migration.NoModification)
}

const maxReasonSize = 256

var _ warden.Msg = (*ToggleMsg)(nil)

func (ToggleMsg) Path() string {
	return "safemode/toggle"
}

func (m *ToggleMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	if m.Reason == "" {
		errs = errors.Append(errs,
			errors.Field("Reason", errors.ErrEmpty, "reason is required"))
	}
	if len(m.Reason) > maxReasonSize {
		errs = errors.Append(errs,
			errors.Field("Reason", errors.ErrInput, "reason too long"))
	}
	return errs
}
