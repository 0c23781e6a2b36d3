package std

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warden-one/warden"
	"github.com/warden-one/warden/crypto"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/x/crossdomain"
	"github.com/warden-one/warden/x/guardian"
	"github.com/warden-one/warden/x/vault"
)

// GenesisOptions returns genesis options with every extension
// configured with workable development defaults. The given address
// becomes the migration admin, the configuration owner of each
// extension and the only cross-domain relayer. Callers add their own
// "ledger", "guardian", "vault" and "crossdomain" state entries on
// top before initializing the chain.
func GenesisOptions(admin warden.Address) (warden.Options, error) {
	if err := admin.Validate(); err != nil {
		return nil, errors.Wrap(err, "admin address")
	}

	conf := map[string]interface{}{
		"migration": migration.Configuration{
			Metadata: &warden.Metadata{Schema: 1},
			Admin:    admin,
		},
		"guardian": guardian.Configuration{
			Metadata:           &warden.Metadata{Schema: 1},
			Owner:              admin,
			MinActivationDelay: warden.AsUnixDuration(24 * time.Hour),
		},
		"vault": vault.Configuration{
			Metadata:        &warden.Metadata{Schema: 1},
			Owner:           admin,
			MaxBatchItems:   16,
			MinVotingPeriod: warden.AsUnixDuration(time.Minute),
			MaxVotingPeriod: warden.AsUnixDuration(30 * 24 * time.Hour),
		},
		"crossdomain": crossdomain.Configuration{
			Metadata:       &warden.Metadata{Schema: 1},
			Owner:          admin,
			Relayers:       []warden.Address{admin},
			RelayerQuorum:  1,
			FreshnessBound: warden.AsUnixDuration(24 * time.Hour),
			MessageTimeout: warden.AsUnixDuration(time.Hour),
		},
	}
	rawConf, err := json.Marshal(conf)
	if err != nil {
		return nil, errors.Wrap(err, "marshal conf")
	}

	schema := []string{
		"ledger", "guardian", "safemode", "crossdomain", "vault",
	}
	rawSchema, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrap(err, "marshal schema packages")
	}

	return warden.Options{
		"conf":              rawConf,
		"initialize_schema": rawSchema,
	}, nil
}

// GenInitOptions produces the genesis application state for the
// wardend init command. The first argument is the hex encoded admin
// address; with no arguments a fresh key is generated and its address
// printed, which is only useful for development setups.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var admin warden.Address
	if len(args) > 0 {
		var err error
		if admin, err = warden.ParseAddress(args[0]); err != nil {
			return nil, errors.Wrap(err, "admin address")
		}
	} else {
		admin = crypto.GenPrivKeyEd25519().PublicKey().Address()
		fmt.Printf("generated admin address: %s\n", admin)
	}
	opts, err := GenesisOptions(admin)
	if err != nil {
		return nil, err
	}
	return json.Marshal(opts)
}
