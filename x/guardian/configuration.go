package guardian

import (
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
	"github.com/warden-one/warden/migration"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.MinActivationDelay <= 0 {
		errs = errors.Append(errs,
			errors.Field("MinActivationDelay", errors.ErrInput, "must be a positive duration"))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "guardian", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
