package firebase

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/pkg/errors"
)

// DevTokenService mints and verifies HS256 bearer tokens for local development
// so the API can run without a Firebase project. Never wired in production.
type DevTokenService struct {
	secret []byte
	expiry time.Duration
}

func NewDevTokenService(secret string, expirySeconds int64) *DevTokenService {
	return &DevTokenService{
		secret: []byte(secret),
		expiry: time.Duration(expirySeconds) * time.Second,
	}
}

type devTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *DevTokenService) Mint(userID, role string) (string, error) {
	claims := devTokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Internal("Failed to sign dev token", err)
	}

	return signed, nil
}

func (s *DevTokenService) Verify(ctx context.Context, tokenString string) (*entity.Identity, error) {
	claims := &devTokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("Unexpected signing method", nil)
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	if claims.Subject == "" {
		return nil, errors.Unauthorized("Token carries no subject", nil)
	}

	role := claims.Role
	if role == "" {
		role = entity.RoleBuyer
	}

	return &entity.Identity{UserID: claims.Subject, Role: role}, nil
}
