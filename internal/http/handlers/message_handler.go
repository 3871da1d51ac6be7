package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// MessageHandler обслуживает чат заказчика и охотника по баунти.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler создаёт новый хэндлер.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// StartConversation обрабатывает POST /bounties/:id/chat. Диалог доступен
// только после принятия охотника.
func (h *MessageHandler) StartConversation(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	conversation, err := h.messages.StartConversation(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, conversation)
}

// ListConversations обрабатывает GET /conversations/my.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	conversations, err := h.messages.ListConversations(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result := make([]*dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		result = append(result, dto.NewConversationResponse(&conversations[i], userID))
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"conversations": result})
}

// ListMessages обрабатывает GET /conversations/:conversationId/messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, conversationID, ok := authAndParam(c, "conversationId")
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)

	messages, err := h.messages.ListMessages(c.Request.Context(), userID, conversationID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"messages": messages})
}

// Send обрабатывает POST /conversations/:conversationId/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, conversationID, ok := authAndParam(c, "conversationId")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateMessageContent(req.Content); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.messages.Send(c.Request.Context(), userID, conversationID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, message)
}
