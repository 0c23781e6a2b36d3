package sigs

import (
	"github.com/warden-one/warden/errors"
)

var (
	// ErrInvalidSequence is when the sequence number does not match the
	// database
	ErrInvalidSequence = errors.Register(1000, "invalid sequence")
)
