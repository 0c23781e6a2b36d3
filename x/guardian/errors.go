package guardian

import "github.com/warden-one/warden/errors"

// ErrQuorum is returned when an operation would leave a vault policy
// without enough active guardians to reach its quorum, or when a quorum
// requirement exceeds the number of active guardians.
var ErrQuorum = errors.Register(1100, "quorum violation")
