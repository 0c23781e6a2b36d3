package guardian

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
)

func init() {
	migration.MustRegister(1, &RegisterGuardianMsg{}, migration.NoModification)
	migration.MustRegister(1, &RevokeGuardianMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExpireGuardianMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ warden.Msg = (*RegisterGuardianMsg)(nil)

func (RegisterGuardianMsg) Path() string {
	return "guardian/register"
}

func (m *RegisterGuardianMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	if m.Role != RoleRegular && m.Role != RoleEmergency {
		errs = errors.Append(errs,
			errors.Field("Role", errors.ErrInput, "invalid role"))
	}
	if m.ActivationDelay <= 0 {
		errs = errors.Append(errs,
			errors.Field("ActivationDelay", errors.ErrInput, "must be a positive duration"))
	}
	if m.ExpiresIn < 0 {
		errs = errors.Append(errs,
			errors.Field("ExpiresIn", errors.ErrInput, "must not be negative"))
	}
	return errs
}

var _ warden.Msg = (*RevokeGuardianMsg)(nil)

func (RevokeGuardianMsg) Path() string {
	return "guardian/revoke"
}

func (m *RevokeGuardianMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	return errs
}

var _ warden.Msg = (*ExpireGuardianMsg)(nil)

func (ExpireGuardianMsg) Path() string {
	return "guardian/expire"
}

func (m *ExpireGuardianMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	return errs
}

var _ warden.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "guardian/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		errs = errors.Append(errs,
			errors.Field("Patch", errors.ErrEmpty, "patch is required"))
	}
	return errs
}
