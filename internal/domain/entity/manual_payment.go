package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	tport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"

	"github.com/google/uuid"
)

// ManualPaymentStatus defines possible states for a manual payment record
type ManualPaymentStatus string

// Manual payment record statuses. A record is mutated exactly once by an
// admin decision; approved, rejected and expired are final.
const (
	ManualPending  ManualPaymentStatus = "pending"
	ManualApproved ManualPaymentStatus = "approved"
	ManualRejected ManualPaymentStatus = "rejected"
	ManualExpired  ManualPaymentStatus = "expired"
)

// ManualPaymentRecord is a user-submitted proof-of-payment awaiting a human
// decision. It is 1:1 with a Transaction created in the manual channel.
type ManualPaymentRecord struct {
	ID            string
	UserID        uint64
	TransactionID string
	Amount        string
	Method        string // out-of-band payment method, e.g. "bank_transfer"
	ProofImageRef string // reference to the uploaded proof-of-payment image
	UserNotes     string
	Status        ManualPaymentStatus
	AdminID       uint64 // set only on approve/reject
	AdminNotes    string // set only on approve/reject
	CreatedAt     time.Time
	DecidedAt     *time.Time
}

// NewManualPaymentRecord creates a pending proof-of-payment record for the
// given manual-channel transaction
func NewManualPaymentRecord(
	txn *Transaction,
	method string,
	proofImageRef string,
	userNotes string,
	timeProvider tport.TimeProvider,
) (*ManualPaymentRecord, error) {
	if txn == nil || txn.Channel != ChannelManual {
		return nil, errs.ErrInvalidChannel
	}
	return &ManualPaymentRecord{
		ID:            uuid.NewString(),
		UserID:        txn.UserID,
		TransactionID: txn.ID,
		Amount:        txn.Amount,
		Method:        method,
		ProofImageRef: proofImageRef,
		UserNotes:     userNotes,
		Status:        ManualPending,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// IsDecided returns true once an admin or the expiry sweep has finalized the record
func (r *ManualPaymentRecord) IsDecided() bool {
	return r.Status != ManualPending
}

// Approve marks the record approved. Only legal from pending.
func (r *ManualPaymentRecord) Approve(adminID uint64, notes string, timeProvider tport.TimeProvider) error {
	if r.IsDecided() {
		return errs.ErrManualAlreadyDecided
	}
	now := timeProvider.Now()
	r.Status = ManualApproved
	r.AdminID = adminID
	r.AdminNotes = notes
	r.DecidedAt = &now
	return nil
}

// Reject marks the record rejected. Only legal from pending.
func (r *ManualPaymentRecord) Reject(adminID uint64, notes string, timeProvider tport.TimeProvider) error {
	if r.IsDecided() {
		return errs.ErrManualAlreadyDecided
	}
	now := timeProvider.Now()
	r.Status = ManualRejected
	r.AdminID = adminID
	r.AdminNotes = notes
	r.DecidedAt = &now
	return nil
}

// Expire marks the record expired once the human-review SLA deadline has
// passed without a decision. Only legal from pending.
func (r *ManualPaymentRecord) Expire(timeProvider tport.TimeProvider) error {
	if r.IsDecided() {
		return errs.ErrManualAlreadyDecided
	}
	now := timeProvider.Now()
	r.Status = ManualExpired
	r.DecidedAt = &now
	return nil
}
