package safemode

import "github.com/warden-one/warden/errors"

// ErrSafeMode is returned when safe mode blocks the execution of a
// request that was not originated by the vault owner.
var ErrSafeMode = errors.Register(1300, "safe mode enabled")
