package dto

import "time"

// ManualDecisionRequest represents an admin decision on a manual payment
type ManualDecisionRequest struct {
	AdminID uint64 `json:"adminId" binding:"required"`
	Notes   string `json:"notes,omitempty"`
}

// ManualPaymentResponse represents a manual payment record in API responses
type ManualPaymentResponse struct {
	ID            string     `json:"id"`
	TransactionID string     `json:"transactionId"`
	UserID        uint64     `json:"userId"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method,omitempty"`
	ProofImageRef string     `json:"proofImageRef,omitempty"`
	UserNotes     string     `json:"userNotes,omitempty"`
	Status        string     `json:"status"`
	AdminID       uint64     `json:"adminId,omitempty"`
	AdminNotes    string     `json:"adminNotes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
}

// StuckTransactionResponse represents a reconciliation needing operator action
type StuckTransactionResponse struct {
	TransactionID string    `json:"transactionId"`
	UserID        uint64    `json:"userId"`
	Amount        string    `json:"amount"`
	FailureReason string    `json:"failureReason"`
	RetryCount    int       `json:"retryCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
