package warden

import (
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult captures any non-error result of a state transition,
// to make sure people use error for error cases.
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// Tags carry the emitted events. Every state transition reports what
	// happened here so that an external sink can index the history.
	Tags []common.KVPair
	// Diff, if present, will apply to the validator set in the next block
	Diff []ValidatorUpdate
	// GasUsed is the amount of computational work performed
	GasUsed int64
}

// CheckResult captures any non-error result of a transaction dry-run,
// to make sure people use error for error cases.
type CheckResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// GasAllocated is the maximum units of work we allow this tx to perform
	GasAllocated int64
	// GasPayment is the total fees for this tx (or other source of payment)
	GasPayment int64
}

// NewCheck sets the gas allocated and the log message but no more info.
// These are the most common info needed to be set by the Handler.
func NewCheck(gasAllocated int64, log string) CheckResult {
	return CheckResult{
		GasAllocated: gasAllocated,
		Log:          log,
	}
}
