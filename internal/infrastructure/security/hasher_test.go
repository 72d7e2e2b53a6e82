package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_StableAndOpaque(t *testing.T) {
	h, err := NewHasher("test-salt")
	require.NoError(t, err)

	first := h.Hash("admin123")
	second := h.Hash("admin123")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotContains(t, first, "admin123")
	assert.NotEqual(t, first, h.Hash("admin124"))
}

func TestHasher_SaltChangesHash(t *testing.T) {
	a, err := NewHasher("salt-a")
	require.NoError(t, err)
	b, err := NewHasher("salt-b")
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash("secret"), b.Hash("secret"))
}

func TestHasher_Verify(t *testing.T) {
	h, err := NewHasher("test-salt")
	require.NoError(t, err)

	hash := h.Hash("officer123")
	assert.True(t, h.Verify("officer123", hash))
	assert.False(t, h.Verify("officer12", hash))
	assert.False(t, h.Verify("officer123", ""))
}

func TestNewHasher_RequiresSalt(t *testing.T) {
	_, err := NewHasher("")
	assert.ErrorIs(t, err, ErrEmptySalt)
}
