package wallet

import (
	"context"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
)

// BalanceView is the read-only balance snapshot exposed to UI layers
type BalanceView struct {
	UserID  uint64 `json:"userId"`
	Balance string `json:"balance"`
}

// Service exposes wallet reads and user provisioning. The ledger repository
// is the sole mutator of balances; this service only hands out snapshots.
type Service struct {
	ledgerRepo   persistence.LedgerRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new wallet service
func NewService(ledgerRepo persistence.LedgerRepository, timeProvider coreport.TimeProvider, logger coreport.Logger) *Service {
	return &Service{
		ledgerRepo:   ledgerRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetBalance returns the current ledger balance snapshot for a user
func (s *Service) GetBalance(ctx context.Context, userID uint64) (*BalanceView, error) {
	user, err := s.ledgerRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BalanceView{
		UserID:  user.ID,
		Balance: user.GetBalance(),
	}, nil
}

// CreateUser provisions a new wallet user with a linked casino account reference
func (s *Service) CreateUser(ctx context.Context, userID uint64, initialBalance, casinoAccountRef string) (*entity.User, error) {
	user, err := entity.NewUser(userID, initialBalance, casinoAccountRef, s.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Wallet user created", map[string]any{
		"user_id":            user.ID,
		"casino_account_ref": user.CasinoAccountRef,
	})
	return user, nil
}

// UserExists reports whether a wallet user exists
func (s *Service) UserExists(ctx context.Context, userID uint64) (bool, error) {
	_, err := s.ledgerRepo.GetUser(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errs.IsUserNotFoundError(err) {
		return false, nil
	}
	return false, err
}
