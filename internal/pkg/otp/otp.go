// Package otp generates the one-time numeric codes mailed during
// registration.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// New returns a 6-digit code in [100000, 999999]. The range excludes
// leading zeros so every code is exactly six characters. The code is a
// security credential, so it is drawn from crypto/rand.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
