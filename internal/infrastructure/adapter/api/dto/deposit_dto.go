package dto

// DepositRequest represents the API request for creating a deposit
type DepositRequest struct {
	Amount           string `json:"amount" binding:"required"`
	Channel          string `json:"channel" binding:"required,oneof=gateway manual"`
	IdempotencyToken string `json:"idempotencyToken" binding:"required"`
	// Manual channel proof-of-payment fields
	Method        string `json:"method,omitempty"`
	ProofImageRef string `json:"proofImageRef,omitempty"`
	UserNotes     string `json:"userNotes,omitempty"`
}

// DepositResponse represents the API response for a created deposit
type DepositResponse struct {
	TransactionID string `json:"transactionId"`
	UserID        uint64 `json:"userId"`
	Amount        string `json:"amount"`
	Channel       string `json:"channel"`
	Status        string `json:"status"`
	PayURL        string `json:"payUrl,omitempty"`
	Replayed      bool   `json:"replayed"`
}
