package handler

import (
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// DepositHandler handles deposit-related HTTP requests
type DepositHandler struct {
	engine *reconciliation.Engine
	logger coreport.Logger
}

// NewDepositHandler creates a new deposit handler instance
func NewDepositHandler(engine *reconciliation.Engine, logger coreport.Logger) *DepositHandler {
	return &DepositHandler{
		engine: engine,
		logger: logger,
	}
}

// CreateDeposit handles the POST /wallet/:userId/deposit endpoint
func (h *DepositHandler) CreateDeposit(c *gin.Context) {
	userIDParam := c.Param("userId")
	userID, err := strconv.ParseUint(userIDParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidUserID),
			Message: "Invalid user ID format",
		})
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid deposit request format", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.engine.CreateDeposit(c.Request.Context(), reconciliation.CreateDepositRequest{
		UserID:           userID,
		IdempotencyToken: req.IdempotencyToken,
		Amount:           req.Amount,
		Channel:          req.Channel,
		Method:           req.Method,
		ProofImageRef:    req.ProofImageRef,
		UserNotes:        req.UserNotes,
	})
	if err != nil {
		h.logger.Error("Failed to create deposit", map[string]any{
			"user_id": userID,
			"channel": req.Channel,
			"error":   err.Error(),
		})
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	txn := result.Transaction
	c.JSON(status, dto.DepositResponse{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Amount:        txn.Amount,
		Channel:       string(txn.Channel),
		Status:        string(txn.Status),
		PayURL:        txn.PayURL,
		Replayed:      result.Replayed,
	})
}
