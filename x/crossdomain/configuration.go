package crossdomain

import (
	"github.com/warden-one/warden"
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
	if len(c.Relayers) == 0 {
		errs = errors.Append(errs,
			errors.Field("Relayers", errors.ErrEmpty, "at least one relayer required"))
	}
	for _, r := range c.Relayers {
		if err := r.Validate(); err != nil {
			errs = errors.AppendField(errs, "Relayers", err)
		}
	}
	if c.RelayerQuorum == 0 {
		errs = errors.Append(errs,
			errors.Field("RelayerQuorum", errors.ErrInput, "must be at least 1"))
	}
	if int(c.RelayerQuorum) > len(c.Relayers) {
		errs = errors.Append(errs,
			errors.Field("RelayerQuorum", errors.ErrInput, "exceeds the relayer count"))
	}
	if c.FreshnessBound <= 0 {
		errs = errors.Append(errs,
			errors.Field("FreshnessBound", errors.ErrInput, "must be a positive duration"))
	}
	if c.MessageTimeout <= 0 {
		errs = errors.Append(errs,
			errors.Field("MessageTimeout", errors.ErrInput, "must be a positive duration"))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "crossdomain", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

func (c *Configuration) isRelayer(addr warden.Address) bool {
	for _, r := range c.Relayers {
		if r.Equals(addr) {
			return true
		}
	}
	return false
}
