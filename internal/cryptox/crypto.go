// Package cryptox wraps the primitives the credential store and the
// verification lifecycle rely on: bcrypt secret hashing and uniform random
// numeric codes.
package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// ErrSecretTooLong is returned for secrets bcrypt would silently truncate.
var ErrSecretTooLong = bcrypt.ErrPasswordTooLong

// HashSecret returns the bcrypt hash of secret.
func HashSecret(secret []byte) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return h, nil
}

// CheckSecret reports whether secret matches hash. A nil hash is compared
// against a fixed dummy so unknown accounts cost the same time as known ones.
func CheckSecret(hash, secret []byte) bool {
	if hash == nil {
		hash = dummyHash
		_ = bcrypt.CompareHashAndPassword(hash, secret)
		return false
	}
	err := bcrypt.CompareHashAndPassword(hash, secret)
	return err == nil
}

// well-formed cost-10 bcrypt hash; no secret in use matches it
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3sHNEGwVJaX1e8Q1VqQkz0a")

// NumericCode returns a uniformly random string of digits digits, keeping
// leading zeros ("004219").
func NumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", errors.New("code length out of range")
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("random code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
