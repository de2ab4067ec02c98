package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("secret")
	require.NoError(t, err)

	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "secret", hashed)
}

func TestBcryptHasherVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("secret")
	require.NoError(t, err)

	assert.True(t, hasher.Verify(hashed, "secret"))
	assert.False(t, hasher.Verify(hashed, "wrong"))
}

func TestNewBcryptHasherClampsInvalidCost(t *testing.T) {
	hasher := NewBcryptHasher(1000)

	hashed, err := hasher.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
