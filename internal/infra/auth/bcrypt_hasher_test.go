package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devroots/config"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
)

func newTestHasher(cost int) service.PasswordHasher {
	return NewBcryptHasher(&config.Config{
		Auth: &config.AuthConfig{BcryptCost: cost},
	})
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	for _, password := range []string{"Pw1!", "StrongPass123!", "ünïcødé-Ω9", ""} {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)

		assert.Equal(t, service.VerifyMatch, hasher.Verify(hash, password), "password %q", password)
		assert.Equal(t, service.VerifyMismatch, hasher.Verify(hash, password+"x"), "password %q", password)
	}
}

func TestBcryptHasher_HashIsSalted(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Pw1!")
	require.NoError(t, err)
	second, err := hasher.Hash("Pw1!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	assert.Equal(t, service.VerifyMismatch, hasher.Verify("invalid_hash", "Pw1!"))
	assert.Equal(t, service.VerifyMismatch, hasher.Verify("", "Pw1!"))
}

func TestBcryptHasher_VerifyRequestsRehashForWeakerCost(t *testing.T) {
	weak := newTestHasher(bcrypt.MinCost)
	strong := newTestHasher(bcrypt.MinCost + 1)

	hash, err := weak.Hash("Pw1!")
	require.NoError(t, err)

	result := strong.Verify(hash, "Pw1!")
	assert.Equal(t, service.VerifyMatchRehashNeeded, result)
	assert.True(t, result.Matched())
	assert.Equal(t, service.VerifyMismatch, strong.Verify(hash, "Pw2!"))
}

func TestBcryptHasher_HashTooLong(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := hasher.Hash(string(long))
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	valid := []string{"Pw1!", "StrongPass123!", "MySecure@Pass1"}
	for _, password := range valid {
		assert.NoError(t, hasher.ValidatePasswordStrength(password), "password %q", password)
	}

	invalid := []string{
		"P1!",  // Too short
		"pw1!", // No uppercase
		"PW1!", // No lowercase
		"Pwd!", // No digit
		"Pwd1", // No special character
		"",     // Empty
	}
	for _, password := range invalid {
		err := hasher.ValidatePasswordStrength(password)
		assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength), "password %q", password)
	}
}

func TestBcryptHasher_ValidatePasswordStrength_CustomPolicy(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{
		PasswordStrength: &config.PasswordStrengthConfig{MinLength: 12, MaxLength: 72},
	})

	assert.NoError(t, hasher.ValidatePasswordStrength("alllowercaseletters"))
	assert.Error(t, hasher.ValidatePasswordStrength("short"))
}

func TestBcryptHasher_ValidatePasswordStrength_ClampsMaxLength(t *testing.T) {
	tooLong := strings.Repeat("Aa1!", 19)

	for _, maxLength := range []int{0, 100} {
		hasher := NewBcryptHasher(&config.Config{
			PasswordStrength: &config.PasswordStrengthConfig{MinLength: 4, MaxLength: maxLength},
		})

		err := hasher.ValidatePasswordStrength(tooLong)
		assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength), "maxLength %d", maxLength)
		assert.NoError(t, hasher.ValidatePasswordStrength(tooLong[:72]), "maxLength %d", maxLength)
	}
}
