package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"pasarmobil/internal/infrastructure/firebase"
	ws "pasarmobil/internal/infrastructure/websocket"
	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/logger"
	"pasarmobil/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	verifier  firebase.TokenVerifier
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict before exposing publicly
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, verifier firebase.TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		verifier:  verifier,
	}
}

// HandleWebSocket upgrades the connection after verifying the bearer token.
// Browsers cannot set headers on WebSocket requests, so the credential rides
// in the token query parameter.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthorized("Token is required", nil))
	}

	identity, err := h.verifier.Verify(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: identity.UserID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	logger.Debug("WebSocket connected: %s", identity.UserID)
	return nil
}
