package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/infrastructure/firebase"
	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/response"
)

const identityContextKey = "identity"

type AuthMiddleware struct {
	verifier firebase.TokenVerifier
}

func NewAuthMiddleware(verifier firebase.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate requires a valid bearer credential on the request and stores
// the verified identity on the context. No identity, no access; there is no
// default caller.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Error(c, errors.Unauthorized("Invalid authorization format", nil))
		}

		identity, err := m.verifier.Verify(c.Request().Context(), parts[1])
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set(identityContextKey, *identity)
		return next(c)
	}
}

// IdentityFrom returns the verified identity placed on the context by
// Authenticate.
func IdentityFrom(c echo.Context) (entity.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(entity.Identity)
	return identity, ok
}
