package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// RequestHandler обслуживает отклики охотников на баунти.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler создаёт новый хэндлер.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Apply обрабатывает POST /bounties/:id/requests.
func (h *RequestHandler) Apply(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateRequestMessage(req.Message); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	request, err := h.requests.Apply(c.Request.Context(), userID, bountyID, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, request)
}

// ListByBounty обрабатывает GET /bounties/:id/requests. Доступно только
// владельцу баунти.
func (h *RequestHandler) ListByBounty(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	requests, err := h.requests.ListByBounty(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"requests": requests})
}

// ListMine обрабатывает GET /requests/my.
func (h *RequestHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	requests, err := h.requests.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"requests": requests})
}

// Reject обрабатывает POST /bounties/:id/requests/:requestId/reject.
// Доступно только владельцу баунти.
func (h *RequestHandler) Reject(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "requestId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	request, err := h.requests.Reject(c.Request.Context(), userID, bountyID, requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, request)
}

// Withdraw обрабатывает DELETE /requests/:id. Отозвать можно только
// собственный необработанный отклик.
func (h *RequestHandler) Withdraw(c *gin.Context) {
	userID, requestID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	if err := h.requests.Withdraw(c.Request.Context(), userID, requestID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "отклик отозван", nil)
}
