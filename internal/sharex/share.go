// Package sharex provides the share-grant primitives: opaque link tokens,
// short numeric PINs, and one-way PIN hashing.
package sharex

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PINLength is the number of digits in a generated PIN.
const PINLength = 6

// hashCost is the bcrypt cost used for PIN hashes.
const hashCost = 10

// NewToken returns a fresh unguessable share token for use as the public
// URL component.
func NewToken() string {
	return uuid.NewString()
}

// GeneratePIN returns a random 6-digit numeric PIN. Leading zeros are
// allowed, so the keyspace is exactly 10^6.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashPIN returns a salted one-way hash of the PIN. The plaintext PIN is
// shown to the issuer once and never stored.
func HashPIN(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), hashCost)
	if err != nil {
		return "", fmt.Errorf("pin hash: %w", err)
	}
	return string(h), nil
}

// VerifyPIN reports whether pin matches the stored hash. bcrypt's compare
// is constant-time with respect to the candidate.
func VerifyPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
