package id

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

var ten = big.NewInt(10)

// NewNumeric returns prefix followed by n random decimal digits,
// e.g. NewNumeric("217", 7) => "2170394821".
func NewNumeric(prefix string, n int) string {
	out := make([]byte, 0, len(prefix)+n)
	out = append(out, prefix...)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			d = big.NewInt(0)
		}
		out = append(out, byte('0'+d.Int64()))
	}
	return string(out)
}
