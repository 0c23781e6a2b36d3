package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/warden-one/warden/errors"
)

// GenOptions turns the remaining command line arguments into the
// application state written into the genesis file. This is
// application-specific.
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd prepares the home directory for a node: it writes a genesis
// file with a random chain ID if none exists yet and fills in the
// application state produced by gen. An existing app_state is
// replaced, the rest of the genesis document is left untouched.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	genFile := filepath.Join(home, "config", "genesis.json")
	if err := os.MkdirAll(filepath.Dir(genFile), 0750); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	if fileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
	} else {
		doc := GenesisDoc{
			"chain_id": json.RawMessage(fmt.Sprintf("%q", "warden-"+cmn.RandStr(6))),
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshal genesis")
		}
		if err := ioutil.WriteFile(genFile, out, 0600); err != nil {
			return errors.Wrap(err, "write genesis")
		}
		logger.Info("Generated genesis file", "path", genFile)
	}

	if gen == nil {
		return nil
	}
	options, err := gen(args)
	if err != nil {
		return err
	}
	return addGenesisOptions(genFile, options)
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// GenesisDoc involves some engine-external structures we do not want
// to parse, so we just grab it into a raw object format to add the
// application state line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "read genesis")
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrap(err, "unmarshal genesis")
	}

	doc["app_state"] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal genesis")
	}

	return ioutil.WriteFile(filename, out, 0600)
}
