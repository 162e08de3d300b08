package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "tenantry/pkg/domain-errors"
)

func TestBcrypt(t *testing.T) {
	hasher := NewBcrypt(bcrypt.MinCost)

	t.Run("hash verifies and is salted", func(t *testing.T) {
		first, err := hasher.Hash("correct horse")
		require.NoError(t, err)
		second, err := hasher.Hash("correct horse")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.NoError(t, hasher.Verify("correct horse", first))
		assert.True(t, dErrors.HasCode(hasher.Verify("wrong", first), dErrors.CodeUnauthorized))
	})

	t.Run("rejects empty and oversized secrets", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = hasher.Hash(strings.Repeat("x", 73))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("malformed hash is an internal error", func(t *testing.T) {
		assert.True(t, dErrors.HasCode(hasher.Verify("x", "not-a-hash"), dErrors.CodeInternal))
	})

	t.Run("72 bytes is the limit", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("x", 72))
		assert.NoError(t, err)
	})

	t.Run("out of range cost falls back to default", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).cost)
		assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99).cost)
	})
}
