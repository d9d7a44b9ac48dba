package dto

// BalanceResponse represents the API response for a user's wallet balance
type BalanceResponse struct {
	UserID  uint64 `json:"userId"`
	Balance string `json:"balance"`
}
