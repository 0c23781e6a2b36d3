package orm

import (
	"github.com/warden-one/warden/errors"
)

// orm reserves 100~109 error codes

// ErrInvalidIndex is returned when requesting an index that does not exist.
var ErrInvalidIndex = errors.Register(100, "invalid index")
