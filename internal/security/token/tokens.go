// Package token generates the random secrets handed to clients: refresh tokens and
// numeric one-time codes. Everything reads from crypto/rand.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"math/big"
	"strings"
)

// RefreshTokenBytes is the entropy of a refresh token.
const RefreshTokenBytes = 64

// Generator draws from Source, which defaults to crypto/rand.Reader.
type Generator struct {
	Source io.Reader
}

// Default reads from crypto/rand.
var Default = Generator{Source: rand.Reader}

func (g Generator) src() io.Reader {
	if g.Source == nil {
		return rand.Reader
	}
	return g.Source
}

// OpaqueToken returns nBytes random bytes, standard base64 encoded.
func (g Generator) OpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", errors.New("token: size must be positive")
	}
	b := make([]byte, nBytes)
	if _, err := io.ReadFull(g.src(), b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

var ten = big.NewInt(10)

// OTP returns a code of the given length. Each digit is drawn uniformly on its own,
// so leading zeros are as likely as any other digit.
func (g Generator) OTP(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.New("token: otp length must be positive")
	}
	var sb strings.Builder
	sb.Grow(digits)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(g.src(), ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// GenerateOpaqueToken is Default.OpaqueToken.
func GenerateOpaqueToken(nBytes int) (string, error) { return Default.OpaqueToken(nBytes) }

// NewOTP is Default.OTP.
func NewOTP(digits int) (string, error) { return Default.OTP(digits) }

// SHA256Base64URL is the storage digest of a refresh token.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
