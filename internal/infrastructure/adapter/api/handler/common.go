package handler

import (
	"errors"
	"net/http"

	domainerr "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// httpStatusFor maps a domain error to an HTTP status code
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrUserNotFound),
		errors.Is(err, domainerr.ErrTransactionNotFound),
		errors.Is(err, domainerr.ErrManualRecordNotFound),
		errors.Is(err, domainerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrManualAlreadyDecided),
		errors.Is(err, domainerr.ErrDuplicateTransaction),
		errors.Is(err, domainerr.ErrTerminalTransaction):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrNegativeAmount),
		errors.Is(err, domainerr.ErrAmountOverflow),
		errors.Is(err, domainerr.ErrInvalidUserID),
		errors.Is(err, domainerr.ErrInvalidChannel),
		errors.Is(err, domainerr.ErrInvalidIdempotencyToken),
		errors.Is(err, domainerr.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrGatewayUnavailable),
		errors.Is(err, domainerr.ErrCasinoUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a standardized error response
func respondError(c *gin.Context, err error) {
	status := httpStatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs
		message = "Internal server error"
	}
	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}
