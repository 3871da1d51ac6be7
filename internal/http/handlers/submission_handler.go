package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// SubmissionHandler обслуживает сдачу и просмотр выполненных работ.
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler создаёт новый хэндлер.
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Submit обрабатывает POST /bounties/:id/submissions.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateSubmissionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateProofURLs(req.ProofURLs); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.submissions.Submit(c.Request.Context(), userID, bountyID, service.SubmitInput{
		Comment:   req.Comment,
		ProofURLs: req.ProofURLs,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, submission)
}

// ListByBounty обрабатывает GET /bounties/:id/submissions. Видят только
// участники баунти.
func (h *SubmissionHandler) ListByBounty(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	submissions, err := h.submissions.ListByBounty(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"submissions": submissions})
}

// Get обрабатывает GET /submissions/:id.
func (h *SubmissionHandler) Get(c *gin.Context) {
	userID, submissionID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.submissions.GetByID(c.Request.Context(), userID, submissionID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, submission)
}
