package router

import (
	"github.com/labstack/echo/v4"

	"pasarmobil/internal/adapter/api/handler"
	"pasarmobil/internal/adapter/api/middleware"
)

// SetupChatRouter sets up conversation and message routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware, superadminMiddleware *middleware.SuperadminMiddleware) {
	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	// Conversation management
	conversations.POST("", chatHandler.OpenConversation)       // POST /v1/conversations - open (get-or-create) a conversation with a room
	conversations.GET("", chatHandler.ListConversations)       // GET /v1/conversations - directory for the caller
	conversations.GET("/:id", chatHandler.GetConversation)     // GET /v1/conversations/:id
	conversations.PUT("/:id/read", chatHandler.MarkAsRead)     // PUT /v1/conversations/:id/read - zero the caller's unread counter

	// Messages
	conversations.POST("/:id/messages", chatHandler.SendMessage)          // POST /v1/conversations/:id/messages
	conversations.GET("/:id/messages", chatHandler.GetMessages)           // GET /v1/conversations/:id/messages
	conversations.POST("/:id/item-details", chatHandler.SendItemDetails)  // POST /v1/conversations/:id/item-details - idempotent listing card

	// Typing presence
	conversations.POST("/:id/typing", chatHandler.SetTyping)     // POST /v1/conversations/:id/typing
	conversations.GET("/:id/typing", chatHandler.GetTypingUsers) // GET /v1/conversations/:id/typing

	adminGroup := e.Group("/v1/admin/conversations")
	adminGroup.Use(authMiddleware.Authenticate)
	adminGroup.Use(superadminMiddleware.SuperadminOnly)

	adminGroup.DELETE("/:id", chatHandler.PurgeConversation) // DELETE /v1/admin/conversations/:id - purge conversation and messages
}
