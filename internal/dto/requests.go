package dto

import "github.com/shopspring/decimal"

// RegisterRequest represents the request to register a new account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to rotate a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateBountyRequest represents the request to publish a bounty
type CreateBountyRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	IsForHonor  bool            `json:"is_for_honor"`
	WorkType    string          `json:"work_type"`
}

// UpdateBountyRequest represents the request to edit an open bounty
type UpdateBountyRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	IsForHonor  bool            `json:"is_for_honor"`
	WorkType    string          `json:"work_type"`
}

// CreateRequestRequest represents a hunter's application to a bounty
type CreateRequestRequest struct {
	Message string `json:"message"`
}

// CreateSubmissionRequest represents a completed work submission
type CreateSubmissionRequest struct {
	Comment   string   `json:"comment"`
	ProofURLs []string `json:"proof_urls"`
}

// RequestRevisionRequest represents the poster's feedback on a submission
type RequestRevisionRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

// DepositRequest represents a balance top-up
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// WithdrawRequest represents a withdrawal to a saved payment method
type WithdrawRequest struct {
	PaymentMethodID string          `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
}

// OpenDisputeRequest represents the request to open a dispute
type OpenDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ResolveDisputeRequest represents an arbiter's decision
type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

// CreateRatingRequest represents a rating left after completion
type CreateRatingRequest struct {
	Score   int    `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

// CreateReportRequest represents a complaint about a user or bounty
type CreateReportRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	Details    string `json:"details"`
}

// ReviewReportRequest represents a moderator's decision on a report
type ReviewReportRequest struct {
	Dismiss bool `json:"dismiss"`
}

// SendMessageRequest represents a chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateProfileRequest represents the request to update own profile
type UpdateProfileRequest struct {
	DisplayName string   `json:"display_name" binding:"required"`
	Bio         *string  `json:"bio"`
	Skills      []string `json:"skills"`
	Location    *string  `json:"location"`
	Phone       *string  `json:"phone"`
	Telegram    *string  `json:"telegram"`
}

// AddPaymentMethodRequest represents a new saved payment method
type AddPaymentMethodRequest struct {
	CardLast4 string `json:"card_last4" binding:"required"`
	BankName  string `json:"bank_name"`
	IsDefault bool   `json:"is_default"`
}

// SendVerificationCodeRequest represents the request to send a code
type SendVerificationCodeRequest struct {
	Channel string `json:"channel" binding:"required"`
}

// ConfirmVerificationCodeRequest represents the code confirmation
type ConfirmVerificationCodeRequest struct {
	Channel string `json:"channel" binding:"required"`
	Code    string `json:"code" binding:"required"`
}
