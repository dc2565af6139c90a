package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/domain/repository"
	"pasarmobil/pkg/errors"
)

// TokenVerifier resolves a bearer credential into a verified identity. It
// fails closed: anything malformed, expired, or unsigned yields Unauthorized.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*entity.Identity, error)
}

// AuthClient verifies Firebase ID tokens. The role comes from the "role"
// custom claim when present, falling back to the user document; identities
// with neither get the lowest-privilege buyer role.
type AuthClient struct {
	client   *auth.Client
	userRepo repository.UserRepository
}

func NewAuthClient(client *auth.Client, userRepo repository.UserRepository) *AuthClient {
	return &AuthClient{
		client:   client,
		userRepo: userRepo,
	}
}

func (a *AuthClient) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	decoded, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	identity := &entity.Identity{
		UserID: decoded.UID,
		Role:   entity.RoleBuyer,
	}

	if role, ok := decoded.Claims["role"].(string); ok && role != "" {
		identity.Role = role
		return identity, nil
	}

	if user, err := a.userRepo.GetByID(ctx, decoded.UID); err == nil && user.Role != "" {
		identity.Role = user.Role
	}

	return identity, nil
}
