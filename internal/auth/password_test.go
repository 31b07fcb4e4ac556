package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("longenough1")
	require.NoError(t, err)
	require.NotEqual(t, "longenough1", digest)

	require.True(t, hasher.Verify("longenough1", digest))
	require.False(t, hasher.Verify("longenough2", digest))
	require.False(t, hasher.Verify("longenough1", "not-a-digest"))

	again, err := hasher.Hash("longenough1")
	require.NoError(t, err)
	require.NotEqual(t, digest, again, "digests must be salted")
}

func TestPasswordHasherCostFallback(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	require.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	require.Equal(t, 12, NewPasswordHasher(12).cost)
}
