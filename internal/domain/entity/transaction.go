package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	tport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"

	"github.com/google/uuid"
)

// Direction represents the direction of a money movement
type Direction string

// Channel represents the payment channel a transaction moves through
type Channel string

// Directions
const (
	DirectionDeposit  Direction = "deposit"
	DirectionWithdraw Direction = "withdraw"
	DirectionTransfer Direction = "transfer"
)

// Channels
const (
	ChannelGateway  Channel = "gateway"
	ChannelManual   Channel = "manual"
	ChannelInternal Channel = "internal"
)

// GatewayPhase tracks progress of the external payment gateway leg
type GatewayPhase string

// Gateway phases
const (
	GatewayNotApplicable GatewayPhase = "not_applicable"
	GatewayPending       GatewayPhase = "pending"
	GatewayCompleted     GatewayPhase = "completed"
	GatewayFailed        GatewayPhase = "failed"
	GatewayExpired       GatewayPhase = "expired"
)

// CasinoPhase tracks progress of the external casino-account leg
type CasinoPhase string

// Casino phases. A transaction stays in CasinoWaiting until the payment leg
// has completed; this is the ordering guarantee between the two external systems.
const (
	CasinoWaiting   CasinoPhase = "waiting"
	CasinoPending   CasinoPhase = "pending"
	CasinoCompleted CasinoPhase = "completed"
	CasinoFailed    CasinoPhase = "failed"
)

// Status is the derived overall status of a transaction
type Status string

// Overall statuses. Completed, failed and expired are terminal.
const (
	StatusPending           Status = "pending"
	StatusAwaitingPayment   Status = "awaiting_payment"
	StatusPaymentConfirmed  Status = "payment_confirmed"
	StatusProcessingCasino  Status = "processing_casino_credit"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusExpired           Status = "expired"
)

// TimelineEntry is one user-visible step in a transaction's progress display.
// The timeline is append-only and never rewritten.
type TimelineEntry struct {
	Phase     string    `json:"phase"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Transaction represents one money movement attempt across the payment
// gateway (or manual review) and the casino account.
type Transaction struct {
	ID                string        // Opaque unique identifier, also used as the casino idempotency key
	UserID            uint64        // ID of the user this transaction belongs to
	IdempotencyToken  string        // Client-supplied creation token; two creates with the same token yield the same transaction
	Direction         Direction     // deposit/withdraw/transfer
	Channel           Channel       // gateway/manual/internal
	Amount            string        // Amount as a string with 2 decimal places
	AmountInCents     int64         // Amount converted to cents for precise calculations
	ExternalReference string        // Gateway-assigned correlation id; empty until assigned, unique once set
	PayURL            string        // Gateway-provided payment URL (gateway channel only)
	GatewayPhase      GatewayPhase  // Progress of the payment leg
	CasinoPhase       CasinoPhase   // Progress of the casino leg
	Status            Status        // Derived overall status
	Timeline          []TimelineEntry
	LedgerCredited    bool          // True once the internal ledger credit has durably applied
	PaymentConfirmedAt *time.Time   // When the payment leg confirmed (gateway completion or manual approval)
	FailureReason     string        // Reason code for terminal failed/expired states
	RetryCount        int           // Casino-leg retry attempts consumed
	NextPollAt        *time.Time    // When the poller should next look at this transaction
	ExpiresAt         *time.Time    // Deadline after which the payment leg expires
	Version           uint64        // Optimistic concurrency guard for compare-and-set updates
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewDepositTransaction creates a new deposit transaction with basic validation.
// The transaction starts in StatusPending; the caller advances it once the
// payment leg has been arranged.
func NewDepositTransaction(
	userID uint64,
	idempotencyToken string,
	amount string,
	channel Channel,
	timeProvider tport.TimeProvider,
) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if idempotencyToken == "" {
		return nil, errs.ErrInvalidIdempotencyToken
	}
	if !isValidChannel(channel) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidChannel, channel)
	}

	amountInCents, err := ValidateAndConvertAmount(amount)
	if err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	txn := &Transaction{
		ID:               uuid.NewString(),
		UserID:           userID,
		IdempotencyToken: idempotencyToken,
		Direction:        DirectionDeposit,
		Channel:          channel,
		Amount:           EnsureTwoDecimalPlaces(amount),
		AmountInCents:    amountInCents,
		GatewayPhase:     GatewayNotApplicable,
		CasinoPhase:      CasinoWaiting,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	txn.AppendTimeline(string(StatusPending), "Deposit created", now)
	return txn, nil
}

// IsTerminal returns true once the transaction has reached a final state.
// No transition may leave a terminal state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed || t.Status == StatusExpired
}

// PaymentReceived returns true once money has actually been received on the
// payment leg, either via the gateway or via an approved manual review.
func (t *Transaction) PaymentReceived() bool {
	return t.GatewayPhase == GatewayCompleted || t.PaymentConfirmedAt != nil
}

// IsDeadlinePassed reports whether the payment-leg deadline has elapsed
func (t *Transaction) IsDeadlinePassed(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// AppendTimeline appends a progress entry unless it would repeat the phase of
// the most recent entry. Redundant poll observations are absorbed here so the
// user-facing timeline never grows noisy.
func (t *Transaction) AppendTimeline(phase, label string, timestamp time.Time) bool {
	if n := len(t.Timeline); n > 0 && t.Timeline[n-1].Phase == phase {
		return false
	}
	t.Timeline = append(t.Timeline, TimelineEntry{
		Phase:     phase,
		Label:     label,
		Timestamp: timestamp,
	})
	return true
}

// LastTimelinePhase returns the phase of the most recent timeline entry,
// or the empty string for an empty timeline
func (t *Transaction) LastTimelinePhase() string {
	if len(t.Timeline) == 0 {
		return ""
	}
	return t.Timeline[len(t.Timeline)-1].Phase
}

// AttachGatewayPayment records the gateway-issued payment reference and moves
// the transaction into awaiting_payment. Only legal from StatusPending.
func (t *Transaction) AttachGatewayPayment(reference, payURL string, expiresAt time.Time, timeProvider tport.TimeProvider) error {
	if t.Status != StatusPending {
		return fmt.Errorf("%w: cannot attach gateway payment in status %s", errs.ErrInvalidRequest, t.Status)
	}
	now := timeProvider.Now()
	t.ExternalReference = reference
	t.PayURL = payURL
	t.GatewayPhase = GatewayPending
	t.Status = StatusAwaitingPayment
	t.ExpiresAt = &expiresAt
	t.NextPollAt = &now
	t.UpdatedAt = now
	t.AppendTimeline(string(StatusAwaitingPayment), "Awaiting gateway payment", now)
	return nil
}

// MarkAwaitingManualReview moves a manual-channel transaction into
// awaiting_payment with a human-review deadline. No gateway polling occurs.
func (t *Transaction) MarkAwaitingManualReview(reviewDeadline time.Time, timeProvider tport.TimeProvider) error {
	if t.Status != StatusPending {
		return fmt.Errorf("%w: cannot await manual review in status %s", errs.ErrInvalidRequest, t.Status)
	}
	now := timeProvider.Now()
	t.GatewayPhase = GatewayNotApplicable
	t.Status = StatusAwaitingPayment
	t.ExpiresAt = &reviewDeadline
	t.UpdatedAt = now
	t.AppendTimeline(string(StatusAwaitingPayment), "Awaiting manual review", now)
	return nil
}

// Helper functions

// isValidChannel validates if the payment channel is allowed
func isValidChannel(channel Channel) bool {
	return channel == ChannelGateway || channel == ChannelManual || channel == ChannelInternal
}

// IsValidChannelString validates a raw channel string from the API layer
func IsValidChannelString(channel string) bool {
	return isValidChannel(Channel(channel))
}
