package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashIsSaltedAndVerifiable(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	second, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must hash differently")
	assert.NotContains(t, first, "Str0ng!Pass")

	for _, hash := range []string{first, second} {
		ok, err := h.Verify(hash, "Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)

	ok, err := h.Verify(hash, "Wr0ng!Pass")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	ok, err := h.Verify("not-a-bcrypt-hash", "Str0ng!Pass")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"explicit", bcrypt.MinCost, bcrypt.MinCost},
		{"zero falls back", 0, DefaultBcryptCost},
		{"too high falls back", bcrypt.MaxCost + 1, DefaultBcryptCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPasswordHasher(tt.cost).Cost())
		})
	}
}

func TestPasswordHasher_StoresConfiguredCost(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost + 1)
	hash, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}
