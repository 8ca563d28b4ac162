package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fibrelink/backend/internal/models"
)

type chatSendRequest struct {
	Message string          `json:"message" validate:"required"`
	Context json.RawMessage `json:"context"`
}

type chatSendResponse struct {
	Reply            string            `json:"reply"`
	SuggestedActions []json.RawMessage `json:"suggested_actions"`
	ConversationID   string            `json:"conversation_id"`
	MessageID        string            `json:"message_id"`
	ReplyMessageID   string            `json:"reply_message_id"`
}

type chatHistoryResponse struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []models.Message `json:"messages"`
	NextCursor     *string          `json:"next_cursor"`
}

// @Summary Send a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param body body chatSendRequest true "message"
// @Success 200 {object} chatSendResponse
// @Failure 429 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/chat/send [post]
func (h *Handler) ChatSend(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req chatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "message required", err.Error())
		return
	}

	res, err := h.Chat.Send(c.Request.Context(), p, req.Message, req.Context)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chatSendResponse{
		Reply:            res.Reply,
		SuggestedActions: res.SuggestedActions,
		ConversationID:   res.ConversationID,
		MessageID:        res.MessageID,
		ReplyMessageID:   res.ReplyMessageID,
	})
}

// @Summary Chat history
// @Tags chat
// @Produce json
// @Param limit query int false "page size, default 20, max 100"
// @Param cursor query string false "message id to page back from"
// @Success 200 {object} chatHistoryResponse
// @Router /api/chat/history [get]
func (h *Handler) ChatHistory(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_INPUT", "limit must be an integer", nil)
			return
		}
		limit = n
	}

	page, err := h.Chat.History(c.Request.Context(), p, limit, c.Query("cursor"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if page.Messages == nil {
		page.Messages = []models.Message{}
	}
	c.JSON(http.StatusOK, chatHistoryResponse{
		ConversationID: page.ConversationID,
		Messages:       page.Messages,
		NextCursor:     page.NextCursor,
	})
}
