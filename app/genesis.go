package app

import (
	"github.com/warden-one/warden"
)

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...warden.Initializer) warden.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []warden.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts warden.Options, kv warden.KVStore) error {
	for _, i := range c.inits {
		err := i.FromGenesis(opts, kv)
		if err != nil {
			return err
		}
	}
	return nil
}
