/*
Package codec provides the binary serialization used for all persistent
state and transaction payloads.

Encoding is deterministic. The same value always serializes to the same
bytes, which is required both for state hashes and for signatures over
transaction content.
*/
package codec

import (
	amino "github.com/tendermint/go-amino"
)

// cdc is the single codec instance every serialized type goes through.
// Types are plain structs, no registration is needed as long as no
// interface typed fields are serialized.
var cdc = amino.NewCodec()

// Marshal returns the deterministic binary encoding of o.
func Marshal(o interface{}) ([]byte, error) {
	return cdc.MarshalBinaryBare(o)
}

// Unmarshal decodes data into the value pointed to by o.
func Unmarshal(data []byte, o interface{}) error {
	return cdc.UnmarshalBinaryBare(data, o)
}

// MarshalJSON returns the JSON encoding of o, using the same field
// conventions as the binary codec.
func MarshalJSON(o interface{}) ([]byte, error) {
	return cdc.MarshalJSON(o)
}

// UnmarshalJSON decodes JSON data into the value pointed to by o.
func UnmarshalJSON(data []byte, o interface{}) error {
	return cdc.UnmarshalJSON(data, o)
}
