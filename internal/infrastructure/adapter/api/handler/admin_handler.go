package handler

import (
	"net/http"
	"strconv"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

// AdminHandler handles admin review HTTP requests
type AdminHandler struct {
	engine *reconciliation.Engine
	logger coreport.Logger
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(engine *reconciliation.Engine, logger coreport.Logger) *AdminHandler {
	return &AdminHandler{
		engine: engine,
		logger: logger,
	}
}

// ApproveManualPayment handles the POST /admin/manual-payments/:id/approve endpoint
func (h *AdminHandler) ApproveManualPayment(c *gin.Context) {
	h.decideManualPayment(c, true)
}

// RejectManualPayment handles the POST /admin/manual-payments/:id/reject endpoint
func (h *AdminHandler) RejectManualPayment(c *gin.Context) {
	h.decideManualPayment(c, false)
}

func (h *AdminHandler) decideManualPayment(c *gin.Context, approve bool) {
	paymentID := c.Param("id")

	var req dto.ManualDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	var err error
	if approve {
		err = h.engine.ApproveManual(c.Request.Context(), paymentID, req.AdminID, req.Notes)
	} else {
		err = h.engine.RejectManual(c.Request.Context(), paymentID, req.AdminID, req.Notes)
	}

	if err != nil {
		h.logger.Warn("Manual payment decision failed", map[string]any{
			"payment_id": paymentID,
			"admin_id":   req.AdminID,
			"approve":    approve,
			"error":      err.Error(),
		})
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPendingManualPayments handles the GET /admin/manual-payments endpoint
func (h *AdminHandler) ListPendingManualPayments(c *gin.Context) {
	limit := parseLimit(c)

	records, err := h.engine.ListPendingReviews(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.ManualPaymentResponse, 0, len(records))
	for _, record := range records {
		response = append(response, toManualPaymentResponse(record))
	}

	c.JSON(http.StatusOK, response)
}

// ListStuckTransactions handles the GET /admin/stuck-transactions endpoint.
// These are ledger-credited reconciliations whose casino push permanently
// failed; resolving them is a manual operator task.
func (h *AdminHandler) ListStuckTransactions(c *gin.Context) {
	limit := parseLimit(c)

	transactions, err := h.engine.ListStuck(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.StuckTransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		response = append(response, dto.StuckTransactionResponse{
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			Amount:        txn.Amount,
			FailureReason: txn.FailureReason,
			RetryCount:    txn.RetryCount,
			UpdatedAt:     txn.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

// toManualPaymentResponse converts a record entity to its API representation
func toManualPaymentResponse(record *entity.ManualPaymentRecord) dto.ManualPaymentResponse {
	return dto.ManualPaymentResponse{
		ID:            record.ID,
		TransactionID: record.TransactionID,
		UserID:        record.UserID,
		Amount:        record.Amount,
		Method:        record.Method,
		ProofImageRef: record.ProofImageRef,
		UserNotes:     record.UserNotes,
		Status:        string(record.Status),
		AdminID:       record.AdminID,
		AdminNotes:    record.AdminNotes,
		CreatedAt:     record.CreatedAt,
		DecidedAt:     record.DecidedAt,
	}
}

// parseLimit reads the optional limit query parameter
func parseLimit(c *gin.Context) int {
	limitParam := c.Query("limit")
	if limitParam == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
