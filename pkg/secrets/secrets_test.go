package secrets

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dingauth/pkg/domain-errors"
)

func TestGenerateSigningKey(t *testing.T) {
	key, err := GenerateSigningKey(32)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(key)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := GenerateSigningKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestGenerateSigningKeyEnforcesMinimum(t *testing.T) {
	key, err := GenerateSigningKey(4)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(key)
	require.NoError(t, err)
	assert.Len(t, raw, MinSigningKeyBytes)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, IsHashed(hash))
	assert.False(t, IsHashed("s3cret"))

	require.NoError(t, VerifyPassword("s3cret", hash))

	err = VerifyPassword("wrong", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashPasswordRejectsInvalid(t *testing.T) {
	_, err := HashPassword("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = HashPassword(strings.Repeat("x", 80))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	err := VerifyPassword("s3cret", "not-a-hash")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
