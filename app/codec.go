package app

import (
	"github.com/warden-one/warden/codec"
)

// ResultSet is a collection of raw byte results, used to return a list of
// keys or values from a range query.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

func (rs *ResultSet) Marshal() ([]byte, error) {
	return codec.Marshal(rs)
}

func (rs *ResultSet) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, rs)
}
