package security

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)

		_, err = hex.DecodeString(token)
		assert.NoError(t, err, "token must be hex")

		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
