package handler

import (
	"github.com/labstack/echo/v4"

	"pasarmobil/internal/infrastructure/firebase"
	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/response"
)

// DevTokenHandler mints local bearer tokens so the API can be exercised
// without a Firebase project. Only routed in development.
type DevTokenHandler struct {
	devTokens *firebase.DevTokenService
}

func NewDevTokenHandler(devTokens *firebase.DevTokenService) *DevTokenHandler {
	return &DevTokenHandler{
		devTokens: devTokens,
	}
}

type devTokenRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=buyer admin superadmin"`
}

func (h *DevTokenHandler) MintToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	token, err := h.devTokens.Mint(req.UserID, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"token": token})
}
