package errors

import (
	"fmt"
)

// SuccessABCICode is the ABCI code reported for a successfully processed
// transaction.
const SuccessABCICode = 0

const (
	// internalABCICode is reported for all errors that do not carry a
	// registered code. Those errors must not leak implementation details,
	// hence the generic log message.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the ABCI error information as consumed by the tendermint
// client. Returned code and log message should be used as a ResponseCheckTx
// or ResponseDeliverTx attributes.
//
// In debug mode the full error information, including the stacktrace, is
// returned. Otherwise only errors created within this framework expose their
// message and everything else is redacted to avoid leaking internal details.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}

	if debug {
		return abciCode(err), fmt.Sprintf("%+v", err)
	}

	// A panic message can contain sensitive system information and must
	// never be transmitted, regardless of its error code.
	if ErrPanic.Is(err) {
		return internalABCICode, internalABCILog
	}

	if code := abciCode(err); code != internalABCICode {
		return code, err.Error()
	}
	return internalABCICode, internalABCILog
}

// abciCode unwraps the error until an error code carrier is found.
func abciCode(err error) uint32 {
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalABCICode
		}
	}
}

type coder interface {
	Code() uint32
}

// ABCIError resolves an error code and a log as returned in an ABCI response
// back into an error instance. If the code belongs to a registered error the
// result matches that error in Is tests. All other codes produce a one-off
// error value.
func ABCIError(code uint32, log string) error {
	if code == SuccessABCICode {
		return nil
	}
	if e, ok := usedCodes[code]; ok && e != nil {
		return Wrap(e, log)
	}
	return Wrap(&Error{code: code, desc: "remote"}, log)
}
