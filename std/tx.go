package std

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/x/crossdomain"
	"github.com/warden-one/warden/x/guardian"
	"github.com/warden-one/warden/x/ledger"
	"github.com/warden-one/warden/x/safemode"
	"github.com/warden-one/warden/x/sigs"
	"github.com/warden-one/warden/x/vault"
)

// Tx is the transaction envelope of this engine: one message out of
// the closed sum below, plus the signatures authenticating the sender.
// Exactly one message field must be set. The codec cannot serialize
// interface fields, so the sum is spelled out.
type Tx struct {
	Signatures []*sigs.StdSignature `json:"signatures,omitempty"`

	SendMsg                            *ledger.SendMsg                      `json:"send_msg,omitempty"`
	RegisterGuardianMsg                *guardian.RegisterGuardianMsg        `json:"register_guardian_msg,omitempty"`
	RevokeGuardianMsg                  *guardian.RevokeGuardianMsg          `json:"revoke_guardian_msg,omitempty"`
	ExpireGuardianMsg                  *guardian.ExpireGuardianMsg          `json:"expire_guardian_msg,omitempty"`
	GuardianUpdateConfigurationMsg     *guardian.UpdateConfigurationMsg     `json:"guardian_update_configuration_msg,omitempty"`
	CreateVaultMsg                     *vault.CreateVaultMsg                `json:"create_vault_msg,omitempty"`
	UpdatePolicyMsg                    *vault.UpdatePolicyMsg               `json:"update_policy_msg,omitempty"`
	CreateRequestMsg                   *vault.CreateRequestMsg              `json:"create_request_msg,omitempty"`
	VoteMsg                            *vault.VoteMsg                       `json:"vote_msg,omitempty"`
	SubmitSignaturesMsg                *vault.SubmitSignaturesMsg           `json:"submit_signatures_msg,omitempty"`
	ExecuteMsg                         *vault.ExecuteMsg                    `json:"execute_msg,omitempty"`
	CancelMsg                          *vault.CancelMsg                     `json:"cancel_msg,omitempty"`
	ExpireRequestMsg                   *vault.ExpireRequestMsg              `json:"expire_request_msg,omitempty"`
	VaultUpdateConfigurationMsg        *vault.UpdateConfigurationMsg        `json:"vault_update_configuration_msg,omitempty"`
	ToggleMsg                          *safemode.ToggleMsg                  `json:"toggle_msg,omitempty"`
	RelayMessageMsg                    *crossdomain.RelayMessageMsg         `json:"relay_message_msg,omitempty"`
	CrossdomainUpdateConfigurationMsg  *crossdomain.UpdateConfigurationMsg  `json:"crossdomain_update_configuration_msg,omitempty"`
	UpgradeSchemaMsg                   *migration.UpgradeSchemaMsg          `json:"upgrade_schema_msg,omitempty"`
	BumpSequenceMsg                    *sigs.BumpSequenceMsg                `json:"bump_sequence_msg,omitempty"`
}

var _ warden.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// GetMsg returns the single message this transaction carries.
func (tx *Tx) GetMsg() (warden.Msg, error) {
	var found warden.Msg
	for _, msg := range []warden.Msg{
		tx.SendMsg,
		tx.RegisterGuardianMsg,
		tx.RevokeGuardianMsg,
		tx.ExpireGuardianMsg,
		tx.GuardianUpdateConfigurationMsg,
		tx.CreateVaultMsg,
		tx.UpdatePolicyMsg,
		tx.CreateRequestMsg,
		tx.VoteMsg,
		tx.SubmitSignaturesMsg,
		tx.ExecuteMsg,
		tx.CancelMsg,
		tx.ExpireRequestMsg,
		tx.VaultUpdateConfigurationMsg,
		tx.ToggleMsg,
		tx.RelayMessageMsg,
		tx.CrossdomainUpdateConfigurationMsg,
		tx.UpgradeSchemaMsg,
		tx.BumpSequenceMsg,
	} {
		if isNilMsg(msg) {
			continue
		}
		if found != nil {
			return nil, errors.Wrap(errors.ErrInput, "transaction carries more than one message")
		}
		found = msg
	}
	if found == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "transaction carries no message")
	}
	return found, nil
}

// isNilMsg reports whether the interface wraps a nil pointer. The
// message list above boxes typed nils.
func isNilMsg(msg warden.Msg) bool {
	switch m := msg.(type) {
	case *ledger.SendMsg:
		return m == nil
	case *guardian.RegisterGuardianMsg:
		return m == nil
	case *guardian.RevokeGuardianMsg:
		return m == nil
	case *guardian.ExpireGuardianMsg:
		return m == nil
	case *guardian.UpdateConfigurationMsg:
		return m == nil
	case *vault.CreateVaultMsg:
		return m == nil
	case *vault.UpdatePolicyMsg:
		return m == nil
	case *vault.CreateRequestMsg:
		return m == nil
	case *vault.VoteMsg:
		return m == nil
	case *vault.SubmitSignaturesMsg:
		return m == nil
	case *vault.ExecuteMsg:
		return m == nil
	case *vault.CancelMsg:
		return m == nil
	case *vault.ExpireRequestMsg:
		return m == nil
	case *vault.UpdateConfigurationMsg:
		return m == nil
	case *safemode.ToggleMsg:
		return m == nil
	case *crossdomain.RelayMessageMsg:
		return m == nil
	case *crossdomain.UpdateConfigurationMsg:
		return m == nil
	case *migration.UpgradeSchemaMsg:
		return m == nil
	case *sigs.BumpSequenceMsg:
		return m == nil
	default:
		return msg == nil
	}
}

// GetSignBytes returns the canonical bytes signatures cover: the
// serialized transaction without its signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	bare := *tx
	bare.Signatures = nil
	return bare.Marshal()
}

// GetSignatures returns the signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

func (tx *Tx) Marshal() ([]byte, error) {
	return codec.Marshal(tx)
}

func (tx *Tx) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, tx)
}

// TxDecoder parses raw transaction bytes.
func TxDecoder(raw []byte) (warden.Tx, error) {
	var tx Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &tx, nil
}
