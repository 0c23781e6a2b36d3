package migration

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/gconf"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ warden.Initializer = Initializer{}

// FromGenesis will parse initial extension configuration from genesis and
// save it to the database. It also initializes the schema version of all
// packages listed under the "initialize_schema" genesis option.
func (Initializer) FromGenesis(opts warden.Options, kv warden.KVStore) error {
	if err := gconf.InitConfig(kv, opts, "migration", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var packageNames []string
	if err := opts.ReadOptions("initialize_schema", &packageNames); err != nil {
		return errors.Wrap(err, "initialize schema")
	}

	// Before any other package, the migration extension itself must have
	// its schema version initialized. Otherwise no schema aware bucket
	// can operate.
	MustInitPkg(kv, "migration")
	MustInitPkg(kv, packageNames...)

	return nil
}
