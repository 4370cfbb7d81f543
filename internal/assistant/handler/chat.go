package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kova-io/estate-x/internal/assistant/biz"
)

// chatTimeout 限制单次对话请求的总耗时，检索加生成都在其内。
const chatTimeout = 60 * time.Second

// ChatHandler handles conversation HTTP requests.
type ChatHandler struct {
	service *biz.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *biz.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatRequest represents a chat request.
type ChatRequest struct {
	PropertyID     int64  `json:"property_id" binding:"required,gt=0"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" binding:"required"`
}

// Chat handles one round of conversation.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	resp, err := h.service.Chat(ctx, &biz.ChatRequest{
		PropertyID:     req.PropertyID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, resp)
}

// ListConversations lists conversations of one property.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	propertyID, valid := propertyIDQuery(c)
	if !valid {
		return
	}

	convs, err := h.service.ListConversations(c.Request.Context(), propertyID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, convs)
}

// ListMessages lists all messages of a conversation.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	msgs, err := h.service.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, msgs)
}

// DeleteConversation removes a conversation and its messages.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	if err := h.service.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	okWithMessage(c, "Conversation deleted successfully")
}
