package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.NotContains(t, hash, "password123")
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// A fresh salt every time.
	other, err := hashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := hashPassword("password123")
	require.NoError(t, err)

	assert.True(t, verifyPassword(hash, "password123"))
	assert.False(t, verifyPassword(hash, "password124"))
	assert.False(t, verifyPassword(hash, ""))
	assert.False(t, verifyPassword("not-a-hash", "password123"))
	assert.False(t, verifyPassword("", "password123"))
}
