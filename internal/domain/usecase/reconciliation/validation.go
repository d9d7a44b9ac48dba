package reconciliation

import (
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
)

// maxTokenLength bounds the client-supplied idempotency token
const maxTokenLength = 255

// DepositValidator provides validation for deposit creation requests
type DepositValidator struct{}

// NewDepositValidator creates a new DepositValidator
func NewDepositValidator() *DepositValidator {
	return &DepositValidator{}
}

// ValidateCreate validates all fields of a deposit creation request.
// Validation failures are local errors: nothing is persisted and nothing
// is sent to the gateway.
func (v *DepositValidator) ValidateCreate(userID uint64, idempotencyToken, channel, amount string) error {
	// Validate User ID
	if userID == 0 {
		return errs.ErrInvalidUserID
	}

	// Validate idempotency token
	if err := v.validateToken(idempotencyToken); err != nil {
		return err
	}

	// Validate channel
	if err := v.validateChannel(channel); err != nil {
		return err
	}

	// Validate amount
	if _, err := entity.ValidateAndConvertAmount(amount); err != nil {
		return err
	}

	return nil
}

// validateToken checks the client idempotency token
func (v *DepositValidator) validateToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errs.ErrInvalidIdempotencyToken
	}
	if len(token) > maxTokenLength {
		return fmt.Errorf("%w: token exceeds %d characters", errs.ErrInvalidIdempotencyToken, maxTokenLength)
	}
	return nil
}

// validateChannel checks that the payment channel is one a deposit can use.
// The internal channel is reserved for system transfers and cannot be
// requested directly.
func (v *DepositValidator) validateChannel(channel string) error {
	switch entity.Channel(channel) {
	case entity.ChannelGateway, entity.ChannelManual:
		return nil
	default:
		return fmt.Errorf("%w: %s", errs.ErrInvalidChannel, channel)
	}
}
