package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomBytes(t *testing.T) {
	a, err := CryptoRandomBytes(32)
	require.NoError(t, err)
	b, err := CryptoRandomBytes(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestRandomPassword(t *testing.T) {
	pw, err := RandomPassword(16)
	require.NoError(t, err)
	assert.Len(t, pw, 16)

	other, err := RandomPassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, pw, other)
}
