package dto

import (
	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/service"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of register/login
type AuthResponse struct {
	User    *models.User       `json:"user"`
	Profile *models.Profile    `json:"profile,omitempty"`
	Tokens  *service.TokenPair `json:"tokens"`
}

// BountyListResponse represents a paginated bounty list
type BountyListResponse struct {
	Bounties []models.Bounty `json:"bounties"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

// ConversationResponse represents a conversation with counterpart info
type ConversationResponse struct {
	*models.Conversation
	Counterpart *uuid.UUID `json:"counterpart,omitempty"`
}

// NewConversationResponse creates a ConversationResponse from the viewer's side
func NewConversationResponse(conversation *models.Conversation, viewerID uuid.UUID) *ConversationResponse {
	resp := &ConversationResponse{Conversation: conversation}
	switch {
	case conversation.PosterID != nil && *conversation.PosterID == viewerID:
		resp.Counterpart = conversation.HunterID
	case conversation.HunterID != nil && *conversation.HunterID == viewerID:
		resp.Counterpart = conversation.PosterID
	}
	return resp
}

// CascadeResponse represents the outcome of an account deletion
type CascadeResponse struct {
	BountiesArchived int `json:"bounties_archived"`
	BountiesReopened int `json:"bounties_reopened"`
	EscrowsRefunded  int `json:"escrows_refunded"`
	RequestsRejected int `json:"requests_rejected"`
}

// VerificationStatusResponse represents current verification flags
type VerificationStatusResponse struct {
	EmailVerified bool `json:"email_verified"`
	PhoneVerified bool `json:"phone_verified"`
}
