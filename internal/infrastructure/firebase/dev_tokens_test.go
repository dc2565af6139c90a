package firebase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasarmobil/internal/domain/entity"
)

func TestDevTokenRoundTrip(t *testing.T) {
	svc := NewDevTokenService("test-secret", 3600)

	token, err := svc.Mint("user-1", entity.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, entity.RoleAdmin, identity.Role)
}

func TestDevTokenMissingRoleDefaultsToBuyer(t *testing.T) {
	svc := NewDevTokenService("test-secret", 3600)

	token, err := svc.Mint("user-1", "")
	require.NoError(t, err)

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuyer, identity.Role)
}

func TestDevTokenRejectsWrongSecret(t *testing.T) {
	minter := NewDevTokenService("secret-a", 3600)
	verifier := NewDevTokenService("secret-b", 3600)

	token, err := minter.Mint("user-1", entity.RoleBuyer)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestDevTokenRejectsExpired(t *testing.T) {
	svc := NewDevTokenService("test-secret", -60)

	token, err := svc.Mint("user-1", entity.RoleBuyer)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestDevTokenRejectsGarbage(t *testing.T) {
	svc := NewDevTokenService("test-secret", 3600)

	_, err := svc.Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}
