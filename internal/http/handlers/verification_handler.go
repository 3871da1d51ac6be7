package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/service"
)

// VerificationHandler обслуживает подтверждение email и телефона.
type VerificationHandler struct {
	verification *service.VerificationService
	users        *repository.UserRepository
}

// NewVerificationHandler создаёт новый хэндлер.
func NewVerificationHandler(verification *service.VerificationService, users *repository.UserRepository) *VerificationHandler {
	return &VerificationHandler{verification: verification, users: users}
}

// SendCode обрабатывает POST /verification/send.
func (h *VerificationHandler) SendCode(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SendVerificationCodeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.verification.SendCode(c.Request.Context(), userID, req.Channel); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "код отправлен", nil)
}

// Confirm обрабатывает POST /verification/confirm.
func (h *VerificationHandler) Confirm(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.ConfirmVerificationCodeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.verification.ConfirmCode(c.Request.Context(), userID, req.Channel, req.Code); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "подтверждено", nil)
}

// Status обрабатывает GET /verification/status.
func (h *VerificationHandler) Status(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.VerificationStatusResponse{
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
	})
}
