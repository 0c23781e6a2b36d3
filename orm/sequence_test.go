package orm

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/warden-one/warden/store"
	"github.com/warden-one/warden/wardentest/assert"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	cases := []struct {
		bucket     string
		name       string
		init       int64
		increments int64
	}{
		0: {"vault", "id", 0, 22},
		1: {"vault", "seq", 0, 11},
		2: {"vault", "id", 22, 18},
		3: {"req", "id", 0, 77},
		4: {"vault", "seq", 11, 248},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			s := NewSequence(tc.bucket, tc.name)
			_, orig, err := s.Latest(db)
			assert.Nil(t, err)

			var val int64
			for i := int64(0); i < tc.increments; i++ {
				val, err = s.NextInt(db)
				assert.Nil(t, err)
			}
			// expect the final value to be this
			expect := tc.init + tc.increments
			assert.Equal(t, expect, val)

			// make sure final value is bigger than original value
			// if we use the raw bytes to index stuff
			_, last, err := s.Latest(db)
			assert.Nil(t, err)
			assert.Equal(t, 1, bytes.Compare(last, orig))
		})
	}
}

func TestSequenceLatest(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("guardian", "id")

	for i := int64(1); i < 5; i++ {
		raw, err := s.NextVal(db)
		assert.Nil(t, err)
		assert.Equal(t, EncodeSequence(i), raw)

		// Latest must return the recently acquired value without
		// incrementing the counter.
		latestInt, latestRaw, err := s.Latest(db)
		assert.Nil(t, err)
		assert.Equal(t, i, latestInt)
		assert.Equal(t, raw, latestRaw)
	}
}
