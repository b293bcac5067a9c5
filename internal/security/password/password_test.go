package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, h.Verify(hash, "s3cret!"))
	assert.False(t, h.Verify(hash, "s3cret"))
	assert.False(t, h.Verify("", "s3cret!"))
	assert.False(t, h.Verify("not-a-bcrypt-hash", "s3cret!"))

	again, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ per hash")
}

func TestBcryptHasher_RejectsOversizedInput(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	assert.True(t, IsTooLong(err))
}

func TestNewBcryptHasher_FallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
}

func TestPolicy_Validate(t *testing.T) {
	p := DefaultPolicy()

	ok, reasons := p.Validate("12345")
	assert.False(t, ok)
	assert.Equal(t, []string{"too_short"}, reasons)

	ok, _ = p.Validate("123456")
	assert.True(t, ok)

	// runes, not bytes
	ok, _ = p.Validate("ñññññ")
	assert.False(t, ok)

	ok, reasons = p.Validate(strings.Repeat("x", 80))
	assert.False(t, ok)
	assert.Equal(t, []string{"too_long"}, reasons)
}
