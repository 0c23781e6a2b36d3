package crossdomain

import (
	"crypto/sha256"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
)

func init() {
	migration.MustRegister(1, &RelayMessageMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ warden.Msg = (*RelayMessageMsg)(nil)

func (RelayMessageMsg) Path() string {
	return "crossdomain/relay"
}

func (m *RelayMessageMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.MessageID) != sha256.Size {
		errs = errors.Append(errs,
			errors.Field("MessageID", errors.ErrInput, "32 byte message ID required"))
	}
	if m.SourceDomain == "" {
		errs = errors.Append(errs,
			errors.Field("SourceDomain", errors.ErrEmpty, "domain is required"))
	}
	if m.Payload == nil {
		errs = errors.Append(errs,
			errors.Field("Payload", errors.ErrEmpty, "payload is required"))
	} else {
		if m.Payload.DomainID != m.SourceDomain {
			errs = errors.Append(errs,
				errors.Field("Payload", errors.ErrInput, "payload domain differs from source domain"))
		}
		if len(m.Payload.Root) != sha256.Size {
			errs = errors.Append(errs,
				errors.Field("Payload", errors.ErrInput, "32 byte root required"))
		}
		if m.Payload.LeafCount == 0 {
			errs = errors.Append(errs,
				errors.Field("Payload", errors.ErrEmpty, "empty membership set"))
		}
		if m.Payload.ObservedAt == 0 {
			errs = errors.Append(errs,
				errors.Field("Payload", errors.ErrEmpty, "observation time is required"))
		}
	}
	return errs
}

var _ warden.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "crossdomain/update_configuration"
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
