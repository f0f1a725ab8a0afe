package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces uniformly random numeric codes of a fixed length.
type Generator struct {
	Length int
}

// NewGenerator returns a Generator for the given code length. Lengths
// outside 4..12 fall back to 6 digits.
func NewGenerator(length int) Generator {
	if length < 4 || length > 12 {
		length = 6
	}
	return Generator{Length: length}
}

// Generate draws a code from [0, 10^Length) with crypto/rand and
// zero-pads it, so every digit string of that length is equally likely.
func (g Generator) Generate() (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.Length)), nil)

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", g.Length, n), nil
}
