package wardentest

import "encoding/binary"

// SequenceID returns a sequence value encoded as implemented in the orm
// package. Use it to compute keys assigned by a bucket sequence without
// having to run the sequence itself.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
