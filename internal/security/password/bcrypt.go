// Package password hashes and verifies account passwords.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher uses bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. Malformed hashes never match.
func (h *BcryptHasher) Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

// ErrTooLong is returned by Hash for inputs bcrypt cannot take whole.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// IsTooLong reports whether err came from an oversized password.
func IsTooLong(err error) bool { return errors.Is(err, bcrypt.ErrPasswordTooLong) }
