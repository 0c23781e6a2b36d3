package warden

import (
	"fmt"
	"strings"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/errors"
)

const storeKey = "_1:update_validators"

// PubKey is the consensus identity of a validator.
type PubKey struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

func (m PubKey) String() string {
	return fmt.Sprintf("PubKey{%s:%X}", m.Type, m.Data)
}

// ValidatorUpdate is a power change for a single validator. Power zero
// removes the validator from the set.
type ValidatorUpdate struct {
	PubKey PubKey `json:"pub_key"`
	Power  int64  `json:"power"`
}

// ValidatorUpdates holds the power changes accumulated within a block, to be
// propagated to the consensus engine when the block ends.
type ValidatorUpdates struct {
	ValidatorUpdates []ValidatorUpdate `json:"validator_updates"`
}

func (m *ValidatorUpdates) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ValidatorUpdates) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// ValidatorUpdatesToABCI converts warden validator updates to abci representation.
func ValidatorUpdatesToABCI(updates ValidatorUpdates) []abci.ValidatorUpdate {
	res := make([]abci.ValidatorUpdate, len(updates.ValidatorUpdates))

	for k, v := range updates.ValidatorUpdates {
		res[k] = v.AsABCI()
	}

	return res
}

func (m ValidatorUpdate) Validate() error {
	if len(m.PubKey.Data) != 32 || strings.ToLower(m.PubKey.Type) != "ed25519" {
		return errors.Wrapf(errors.ErrType, "invalid public key: %T", m.PubKey.Type)
	}
	if m.Power < 0 {
		return errors.Wrapf(errors.ErrMsg, "power: %d", m.Power)
	}
	return nil
}

func (m ValidatorUpdate) AsABCI() abci.ValidatorUpdate {
	return abci.ValidatorUpdate{
		PubKey: m.PubKey.AsABCI(),
		Power:  m.Power,
	}
}

func ValidatorUpdateFromABCI(u abci.ValidatorUpdate) ValidatorUpdate {
	return ValidatorUpdate{
		Power:  u.Power,
		PubKey: PubkeyFromABCI(u.PubKey),
	}
}

func PubkeyFromABCI(u abci.PubKey) PubKey {
	return PubKey{
		Type: u.Type,
		Data: u.Data,
	}
}

func (m PubKey) AsABCI() abci.PubKey {
	return abci.PubKey{
		Data: m.Data,
		Type: m.Type,
	}
}

func (m ValidatorUpdates) Validate() error {
	var err error
	for _, v := range m.ValidatorUpdates {
		err = errors.Append(err, v.Validate())
	}
	return err
}

// Deduplicate makes sure we only use the last validator update to any given validator.
// For bookkeeping we have an option to drop validators with zero power, because those
// are being remove by tendermint once propagated.
func (m ValidatorUpdates) Deduplicate(dropZeroPower bool) ValidatorUpdates {
	if len(m.ValidatorUpdates) == 0 {
		return m
	}

	duplicates := make(map[string]int, 0)
	cleanValidatorSlice := make([]ValidatorUpdate, 0, len(m.ValidatorUpdates))

	for _, v := range m.ValidatorUpdates {
		if key, ok := duplicates[v.PubKey.String()]; ok {
			cleanValidatorSlice[key] = v
			continue
		}
		cleanValidatorSlice = append(cleanValidatorSlice, v)
		duplicates[v.PubKey.String()] = len(cleanValidatorSlice) - 1
	}

	// A zero power deletes the validator, so once the last update per
	// validator is known the deleted ones can be dropped.
	if dropZeroPower {
		filtered := make([]ValidatorUpdate, 0, len(cleanValidatorSlice))
		for _, v := range cleanValidatorSlice {
			if v.Power != 0 {
				filtered = append(filtered, v)
			}
		}
		cleanValidatorSlice = filtered
	}

	return ValidatorUpdates{ValidatorUpdates: cleanValidatorSlice}
}

// Store stores ValidatorUpdates to the KVStore while cleaning up those with 0
// power.
func (m ValidatorUpdates) Store(store KVStore) error {
	m = m.Deduplicate(true)

	marshalledUpdates, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "validator updates marshal")
	}
	err = store.Set([]byte(storeKey), marshalledUpdates)

	return errors.Wrap(err, "kvstore save")
}

func GetValidatorUpdates(store KVStore) (ValidatorUpdates, error) {
	vu := ValidatorUpdates{}
	bytes, err := store.Get([]byte(storeKey))
	if err != nil {
		return vu, errors.Wrap(err, "kvstore get")
	}

	err = vu.Unmarshal(bytes)
	return vu, errors.Wrap(err, "validator updates unmarshal")
}

func ValidatorUpdatesFromABCI(u []abci.ValidatorUpdate) ValidatorUpdates {
	vu := ValidatorUpdates{
		ValidatorUpdates: make([]ValidatorUpdate, len(u)),
	}

	for k, v := range u {
		vu.ValidatorUpdates[k] = ValidatorUpdateFromABCI(v)
	}

	return vu
}
