package middleware

import (
	"github.com/labstack/echo/v4"

	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/response"
)

type SuperadminMiddleware struct{}

func NewSuperadminMiddleware() *SuperadminMiddleware {
	return &SuperadminMiddleware{}
}

// SuperadminOnly gates platform-operator routes. Runs after Authenticate.
func (m *SuperadminMiddleware) SuperadminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}
		if !identity.IsSuperadmin() {
			return response.Error(c, errors.Forbidden("Superadmin privileges required", nil))
		}
		return next(c)
	}
}
