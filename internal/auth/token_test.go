package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateToken()
		require.NoError(t, err)

		assert.Len(t, token, 64)
		assert.Regexp(t, hexToken, token)
		assert.False(t, seen[token], "token repeated")
		seen[token] = true
	}
}
