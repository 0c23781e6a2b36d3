package vault

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
	if c.MaxBatchItems == 0 {
		errs = errors.Append(errs,
			errors.Field("MaxBatchItems", errors.ErrInput, "must be at least 1"))
	}
	if c.MinVotingPeriod <= 0 {
		errs = errors.Append(errs,
			errors.Field("MinVotingPeriod", errors.ErrInput, "must be a positive duration"))
	}
	if c.MaxVotingPeriod < c.MinVotingPeriod {
		errs = errors.Append(errs,
			errors.Field("MaxVotingPeriod", errors.ErrInput, "must not be below the minimum"))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "vault", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
