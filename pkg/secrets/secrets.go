// Package secrets hashes credentials one way with bcrypt.
package secrets

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "tenantry/pkg/domain-errors"
)

// maxSecretBytes is the longest input bcrypt hashes without truncation.
const maxSecretBytes = 72

var (
	errEmptySecret   = dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	errSecretTooLong = dErrors.New(dErrors.CodeValidation, "secret is too long")
	errWrongSecret   = dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
)

// Bcrypt hashes at a fixed work factor.
type Bcrypt struct {
	cost int
}

// NewBcrypt clamps an out-of-range cost to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return &Bcrypt{cost: bcrypt.DefaultCost}
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a salted hash of secret.
func (b *Bcrypt) Hash(secret string) (string, error) {
	switch n := len(secret); {
	case n == 0:
		return "", errEmptySecret
	case n > maxSecretBytes:
		return "", errSecretTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(out), nil
}

// Verify reports an unauthorized error when secret does not match hash, and
// an internal error when hash is not a bcrypt hash.
func (b *Bcrypt) Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return errWrongSecret
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
	}
}
