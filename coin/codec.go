package coin

import (
	"github.com/warden-one/warden/codec"
)

// Coin can hold any amount between -1 billion and +1 billion at steps of
// 10^-9. It is a fixed-point decimal representation and does NOT support
// floating point operations.
//
// A coin is the sum of the whole and the fractional part, both carrying the
// same sign. Whole and fractional must never have different signs.
type Coin struct {
	// Whole coins, -10^15 < whole < 10^15
	Whole int64
	// Billionth of coins, 0 <= abs(fractional) < 10^9
	Fractional int64
	// Ticker is the currency code, 3-4 upper case letters.
	Ticker string
}

func (c *Coin) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Coin) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, c)
}
