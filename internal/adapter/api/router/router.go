package router

import (
	"github.com/labstack/echo/v4"

	"pasarmobil/internal/adapter/api/handler"
	"pasarmobil/internal/adapter/api/middleware"
)

type Handlers struct {
	Chat      *handler.ChatHandler
	WebSocket *handler.WebSocketHandler
	Health    *handler.HealthHandler
	DevToken  *handler.DevTokenHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, superadminMiddleware *middleware.SuperadminMiddleware, environment string) {
	SetupChatRouter(e, h.Chat, authMiddleware, superadminMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
	SetupDevRouter(e, h.DevToken, environment)
}
