// Package hash wraps bcrypt for passwords and OTPs: every digest embeds a
// fresh random salt and comparison cost does not depend on where the inputs
// diverge.
package hash

import "golang.org/x/crypto/bcrypt"

// cost matches the 10 rounds used since the first deployment; raising it
// invalidates nothing but slows new hashes.
const cost = 10

// Hash returns the bcrypt digest of plaintext.
func Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plaintext matches digest.
func Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
