package gateway

import (
	"context"
	"time"
)

// PaymentStatus is the gateway-reported status of a payment request
type PaymentStatus string

// Gateway payment statuses. Once a terminal status (completed/failed/expired)
// has been reached, re-polling the same reference returns it stably.
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

// CreatedPayment is the gateway's answer to a payment creation request
type CreatedPayment struct {
	ExternalReference string    // Gateway-assigned correlation id, unique per payment
	PayURL            string    // Where the user completes the payment (QR / e-wallet page)
	ExpiresAt         time.Time // Deadline after which the payment request lapses
}

// PaymentGatewayClient is the thin interface to the external deposit channel.
// Vendor wire formats stay behind this boundary.
//
// Errors are classified with the domain sentinels: ErrGatewayUnavailable for
// transient failures (timeouts, 5xx) and ErrGatewayRejected for permanent
// ones (invalid reference, invalid amount).
type PaymentGatewayClient interface {
	// CreatePayment asks the gateway to issue a payment request for the amount
	CreatePayment(ctx context.Context, amount string) (*CreatedPayment, error)

	// PollStatus fetches the current status of a previously created payment
	PollStatus(ctx context.Context, externalReference string) (PaymentStatus, error)
}
