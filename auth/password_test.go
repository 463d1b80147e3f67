package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	digest, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", digest)

	assert.True(t, CheckPassword("hunter2", digest))
	assert.False(t, CheckPassword("HUNTER2", digest))
	assert.False(t, CheckPassword("", digest))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	a, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
