package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
	"github.com/gin-gonic/gin"
)

// StatusHandler handles transaction status HTTP requests
type StatusHandler struct {
	engine *reconciliation.Engine
	logger coreport.Logger
}

// NewStatusHandler creates a new status handler instance
func NewStatusHandler(engine *reconciliation.Engine, logger coreport.Logger) *StatusHandler {
	return &StatusHandler{
		engine: engine,
		logger: logger,
	}
}

// GetStatus handles the GET /transactions/:id/status endpoint.
// The view is read-only; it never advances the transaction.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	transactionID := c.Param("id")

	view, err := h.engine.GetStatus(c.Request.Context(), transactionID)
	if err != nil {
		h.logger.Warn("Failed to get transaction status", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
