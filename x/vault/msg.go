package vault

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
)

func init() {
	migration.MustRegister(1, &CreateVaultMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdatePolicyMsg{}, migration.NoModification)
	migration.MustRegister(1, &CreateRequestMsg{}, migration.NoModification)
	migration.MustRegister(1, &VoteMsg{}, migration.NoModification)
	migration.MustRegister(1, &SubmitSignaturesMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExecuteMsg{}, migration.NoModification)
	migration.MustRegister(1, &CancelMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExpireRequestMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ warden.Msg = (*CreateVaultMsg)(nil)

func (CreateVaultMsg) Path() string {
	return "vault/create"
}

func (m *CreateVaultMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Rules", validateRules(m.Rules))
	return errs
}

var _ warden.Msg = (*UpdatePolicyMsg)(nil)

func (UpdatePolicyMsg) Path() string {
	return "vault/update_policy"
}

func (m *UpdatePolicyMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	errs = errors.AppendField(errs, "Rules", validateRules(m.Rules))
	return errs
}

func validateRules(rules []*Rule) error {
	if len(rules) == 0 {
		return errors.Wrap(errors.ErrEmpty, "at least one rule required")
	}
	seen := make(map[Kind]bool, len(rules))
	for i, r := range rules {
		if r == nil {
			return errors.Wrapf(errors.ErrEmpty, "rule %d is nil", i)
		}
		if seen[r.Kind] {
			return errors.Wrapf(errors.ErrDuplicate, "rule %d repeats kind %s", i, r.Kind)
		}
		seen[r.Kind] = true
		if err := r.Validate(); err != nil {
			return errors.Wrapf(err, "rule %d", i)
		}
	}
	return nil
}

var _ warden.Msg = (*CreateRequestMsg)(nil)

func (CreateRequestMsg) Path() string {
	return "vault/create_request"
}

func (m *CreateRequestMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.VaultID) != 8 {
		errs = errors.Append(errs,
			errors.Field("VaultID", errors.ErrInput, "8 bytes required"))
	}
	// Borrow the request payload validation by building the shape the
	// request will have. Timing fields are filled by the handler.
	probe := Request{
		Kind:     m.Kind,
		Transfer: m.Transfer,
		Batch:    m.Batch,
		Recovery: m.Recovery,
		Unlock:   m.Unlock,
	}
	errs = errors.AppendField(errs, "Payload", probe.validatePayload())
	return errs
}

var _ warden.Msg = (*VoteMsg)(nil)

func (VoteMsg) Path() string {
	return "vault/vote"
}

func (m *VoteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.RequestID) != 8 {
		errs = errors.Append(errs,
			errors.Field("RequestID", errors.ErrInput, "8 bytes required"))
	}
	return errs
}

var _ warden.Msg = (*SubmitSignaturesMsg)(nil)

func (SubmitSignaturesMsg) Path() string {
	return "vault/submit_signatures"
}

func (m *SubmitSignaturesMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.RequestID) != 8 {
		errs = errors.Append(errs,
			errors.Field("RequestID", errors.ErrInput, "8 bytes required"))
	}
	if len(m.Packed) == 0 || len(m.Packed)%64 != 0 {
		errs = errors.Append(errs,
			errors.Field("Packed", errors.ErrInput, "64 bytes per signature required"))
	}
	return errs
}

var _ warden.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return "vault/execute"
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.RequestID) != 8 {
		errs = errors.Append(errs,
			errors.Field("RequestID", errors.ErrInput, "8 bytes required"))
	}
	return errs
}

var _ warden.Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string {
	return "vault/cancel"
}

func (m *CancelMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.RequestID) != 8 {
		errs = errors.Append(errs,
			errors.Field("RequestID", errors.ErrInput, "8 bytes required"))
	}
	return errs
}

var _ warden.Msg = (*ExpireRequestMsg)(nil)

func (ExpireRequestMsg) Path() string {
	return "vault/expire_request"
}

func (m *ExpireRequestMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.RequestID) != 8 {
		errs = errors.Append(errs,
			errors.Field("RequestID", errors.ErrInput, "8 bytes required"))
	}
	return errs
}

var _ warden.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "vault/update_configuration"
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
