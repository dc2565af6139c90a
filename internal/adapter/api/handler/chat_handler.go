package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"pasarmobil/internal/adapter/api/middleware"
	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/usecase"
	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/response"
)

type ChatHandler struct {
	conversationUseCase *usecase.ConversationUseCase
	chatUseCase         *usecase.ChatUseCase
}

func NewChatHandler(conversationUseCase *usecase.ConversationUseCase, chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		conversationUseCase: conversationUseCase,
		chatUseCase:         chatUseCase,
	}
}

type openConversationRequest struct {
	RoomID  string `json:"room_id" validate:"required"`
	BuyerID string `json:"buyer_id,omitempty"`
}

type sendMessageRequest struct {
	Body       string             `json:"body,omitempty"`
	Attachment *entity.Attachment `json:"attachment,omitempty"`
}

type itemDetailsRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type typingRequest struct {
	IsTyping bool `json:"is_typing"`
}

// OpenConversation resolves or creates the caller's conversation with a room.
func (h *ChatHandler) OpenConversation(c echo.Context) error {
	var req openConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conversation, err := h.conversationUseCase.Open(c.Request().Context(), identity, usecase.OpenConversationInput{
		RoomID:  req.RoomID,
		BuyerID: req.BuyerID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// ListConversations returns the directory for the authenticated viewer.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	limit, offset := pagination(c)

	conversations, total, err := h.conversationUseCase.List(c.Request().Context(), identity, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, conversations, total, limit, offset)
}

func (h *ChatHandler) GetConversation(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conversation, err := h.conversationUseCase.Get(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	limit, offset := pagination(c)

	messages, total, err := h.chatUseCase.GetMessages(c.Request().Context(), identity, c.Param("id"), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, limit, offset)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), identity, usecase.SendMessageInput{
		ConversationID: c.Param("id"),
		Body:           req.Body,
		Attachment:     req.Attachment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// SendItemDetails records a buyer's interest in a listing. Safe to call on
// every page visit; only the first call per (conversation, item) inserts.
func (h *ChatHandler) SendItemDetails(c echo.Context) error {
	var req itemDetailsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	message, err := h.chatUseCase.SendItemDetails(c.Request().Context(), identity, c.Param("id"), req.ItemID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}

func (h *ChatHandler) SetTyping(c echo.Context) error {
	var req typingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	if err := h.chatUseCase.SetTyping(c.Request().Context(), identity, c.Param("id"), req.IsTyping); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"accepted": true})
}

func (h *ChatHandler) GetTypingUsers(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	users, err := h.chatUseCase.TypingUsers(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"typing": users})
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	if err := h.chatUseCase.MarkAsRead(c.Request().Context(), identity, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}

// PurgeConversation deletes a conversation and its messages. Superadmin only.
func (h *ChatHandler) PurgeConversation(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	if err := h.conversationUseCase.Purge(c.Request().Context(), identity, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"purged": true})
}

func pagination(c echo.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
