package guardian

import (
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
)

func init() {
	migration.MustRegister(1, &Guardian{}, migration.NoModification)
}

var _ orm.CloneableData = (*Guardian)(nil)

func (g *Guardian) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", g.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", g.Address.Validate())
	if g.Role != RoleRegular && g.Role != RoleEmergency {
		errs = errors.Append(errs,
			errors.Field("Role", errors.ErrModel, "invalid role"))
	}
	switch g.Status {
	case StatusPending, StatusActive, StatusExpired, StatusRevoked:
	default:
		errs = errors.Append(errs,
			errors.Field("Status", errors.ErrModel, "invalid status"))
	}
	if g.RegisteredAt == 0 {
		errs = errors.Append(errs,
			errors.Field("RegisteredAt", errors.ErrEmpty, "registration time is required"))
	}
	if g.ActivatedAt < g.RegisteredAt {
		errs = errors.Append(errs,
			errors.Field("ActivatedAt", errors.ErrModel, "must not precede registration"))
	}
	if g.ExpiresAt != 0 && g.ExpiresAt <= g.RegisteredAt {
		errs = errors.Append(errs,
			errors.Field("ExpiresAt", errors.ErrModel, "must follow registration"))
	}
	return errs
}

func (g *Guardian) Copy() orm.CloneableData {
	cpy := *g
	cpy.Metadata = g.Metadata.Copy()
	cpy.Address = append([]byte(nil), g.Address...)
	return &cpy
}

// NewGuardianBucket returns a bucket for guardian records, keyed by the
// guardian address and indexed by role.
func NewGuardianBucket() orm.ModelBucket {
	b := orm.NewModelBucket("grdn", &Guardian{},
		orm.WithIndex("role", roleIndexer, false),
	)
	return migration.NewModelBucket("guardian", b)
}

func roleIndexer(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot index nil object")
	}
	g, ok := obj.Value().(*Guardian)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "can only index guardians")
	}
	return []byte{byte(g.Role)}, nil
}
