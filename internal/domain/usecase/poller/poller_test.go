package poller

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	gw "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
	mcore "github.com/amirhossein-jamali/payment-reconciler/mocks/port/core"
	mgw "github.com/amirhossein-jamali/payment-reconciler/mocks/port/gateway"
	mpers "github.com/amirhossein-jamali/payment-reconciler/mocks/port/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type pollerMocks struct {
	uow        *mpers.MockUnitOfWork
	txnRepo    *mpers.MockTransactionRepository
	ledgerRepo *mpers.MockLedgerRepository
	manualRepo *mpers.MockManualPaymentRepository
	gateway    *mgw.MockPaymentGatewayClient
	casino     *mgw.MockCasinoAccountClient
	timeProv   *mcore.MockTimeProvider
	logger     *mcore.MockLogger
}

func newTestPoller(t *testing.T, cfg Config) (*StatusPoller, *pollerMocks) {
	t.Helper()

	m := &pollerMocks{
		uow:        mpers.NewMockUnitOfWork(t),
		txnRepo:    mpers.NewMockTransactionRepository(t),
		ledgerRepo: mpers.NewMockLedgerRepository(t),
		manualRepo: mpers.NewMockManualPaymentRepository(t),
		gateway:    mgw.NewMockPaymentGatewayClient(t),
		casino:     mgw.NewMockCasinoAccountClient(t),
		timeProv:   mcore.NewMockTimeProvider(t),
		logger:     mcore.NewMockLogger(t),
	}

	m.timeProv.On("Now").Return(testNow).Maybe()
	m.logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	m.logger.On("Info", mock.Anything, mock.Anything).Maybe()
	m.logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	m.logger.On("Error", mock.Anything, mock.Anything).Maybe()

	engine := reconciliation.NewEngine(
		m.uow,
		m.txnRepo,
		m.ledgerRepo,
		m.manualRepo,
		m.gateway,
		m.casino,
		m.timeProv,
		m.logger,
		reconciliation.DefaultConfig(),
	)
	p := NewStatusPoller(engine, m.txnRepo, m.gateway, m.timeProv, m.logger, cfg)
	return p, m
}

func dueGatewayTxn() *entity.Transaction {
	expiresAt := testNow.Add(time.Hour)
	nextPollAt := testNow.Add(-time.Second)
	return &entity.Transaction{
		ID:                "txn-1",
		UserID:            1,
		Channel:           entity.ChannelGateway,
		Amount:            "50.00",
		AmountInCents:     5000,
		ExternalReference: "ext-1",
		Status:            entity.StatusAwaitingPayment,
		GatewayPhase:      entity.GatewayPending,
		CasinoPhase:       entity.CasinoWaiting,
		ExpiresAt:         &expiresAt,
		NextPollAt:        &nextPollAt,
	}
}

func dueCasinoTxn() *entity.Transaction {
	txn := dueGatewayTxn()
	confirmedAt := testNow.Add(-time.Minute)
	txn.ID = "txn-2"
	txn.Status = entity.StatusProcessingCasino
	txn.GatewayPhase = entity.GatewayCompleted
	txn.CasinoPhase = entity.CasinoPending
	txn.LedgerCredited = true
	txn.PaymentConfirmedAt = &confirmedAt
	return txn
}

func expectNoOverdue(ctx context.Context, m *pollerMocks) {
	m.txnRepo.On("ListOverdue", ctx, testNow, mock.AnythingOfType("int")).
		Return([]*entity.Transaction{}, nil)
	m.manualRepo.On("ListOverdue", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
		Return([]*entity.ManualPaymentRecord{}, nil)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Polls a due gateway transaction and feeds the result back", func(t *testing.T) {
		p, m := newTestPoller(t, DefaultConfig())
		txn := dueGatewayTxn()

		expectNoOverdue(ctx, m)
		m.txnRepo.On("ListDue", ctx, testNow, DefaultConfig().BatchSize).
			Return([]*entity.Transaction{txn}, nil)
		m.gateway.On("PollStatus", ctx, "ext-1").Return(gw.PaymentPending, nil)
		m.txnRepo.On("GetByExternalReference", ctx, "ext-1").Return(txn, nil)
		m.txnRepo.On("UpdateGuarded", ctx, txn).Return(nil)

		p.Sweep(ctx)

		require.NotNil(t, txn.NextPollAt)
		assert.Equal(t, "gateway_pending", txn.LastTimelinePhase())
	})

	t.Run("Drives a due casino-leg transaction", func(t *testing.T) {
		p, m := newTestPoller(t, DefaultConfig())
		txn := dueCasinoTxn()
		user, err := entity.NewUser(1, "100.00", "casino-acct-1", m.timeProv)
		require.NoError(t, err)

		expectNoOverdue(ctx, m)
		m.txnRepo.On("ListDue", ctx, testNow, DefaultConfig().BatchSize).
			Return([]*entity.Transaction{txn}, nil)
		m.txnRepo.On("GetByID", ctx, "txn-2").Return(txn, nil)
		m.ledgerRepo.On("GetUser", ctx, uint64(1)).Return(user, nil)
		m.casino.On("CreditBalance", ctx, "casino-acct-1", "50.00", "txn-2").
			Return(&gw.CreditResult{Completed: true}, nil)
		m.txnRepo.On("UpdateGuarded", ctx, txn).Return(nil)

		p.Sweep(ctx)

		assert.Equal(t, entity.StatusCompleted, txn.Status)
		m.gateway.AssertNotCalled(t, "PollStatus", mock.Anything, mock.Anything)
	})

	t.Run("Expires overdue transactions before polling", func(t *testing.T) {
		p, m := newTestPoller(t, DefaultConfig())
		overdue := dueGatewayTxn()
		past := testNow.Add(-time.Minute)
		overdue.ExpiresAt = &past

		m.txnRepo.On("ListOverdue", ctx, testNow, mock.AnythingOfType("int")).
			Return([]*entity.Transaction{overdue}, nil)
		m.manualRepo.On("ListOverdue", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
			Return([]*entity.ManualPaymentRecord{}, nil)
		m.txnRepo.On("UpdateGuarded", ctx, overdue).Return(nil)
		m.txnRepo.On("ListDue", ctx, testNow, DefaultConfig().BatchSize).
			Return([]*entity.Transaction{}, nil)

		p.Sweep(ctx)

		assert.Equal(t, entity.StatusExpired, overdue.Status)
	})

	t.Run("A failed gateway poll is retried on the next tick", func(t *testing.T) {
		p, m := newTestPoller(t, DefaultConfig())
		txn := dueGatewayTxn()

		expectNoOverdue(ctx, m)
		m.txnRepo.On("ListDue", ctx, testNow, DefaultConfig().BatchSize).
			Return([]*entity.Transaction{txn}, nil)
		m.gateway.On("PollStatus", ctx, "ext-1").Return(gw.PaymentStatus(""), errs.ErrGatewayUnavailable)

		p.Sweep(ctx)

		// No observation reaches the engine; the transaction is untouched
		m.txnRepo.AssertNotCalled(t, "GetByExternalReference", mock.Anything, mock.Anything)
		assert.Equal(t, entity.StatusAwaitingPayment, txn.Status)
	})

	t.Run("A failed due listing aborts the pass", func(t *testing.T) {
		p, m := newTestPoller(t, DefaultConfig())

		expectNoOverdue(ctx, m)
		m.txnRepo.On("ListDue", ctx, testNow, DefaultConfig().BatchSize).
			Return(nil, errs.ErrDatabaseConnection)

		p.Sweep(ctx)

		m.gateway.AssertNotCalled(t, "PollStatus", mock.Anything, mock.Anything)
	})

	t.Run("Fans a batch out over the worker pool", func(t *testing.T) {
		p, m := newTestPoller(t, Config{Interval: time.Second, BatchSize: 10, Workers: 4})

		batch := make([]*entity.Transaction, 0, 6)
		for i := 0; i < 6; i++ {
			txn := dueGatewayTxn()
			txn.ID = "txn-batch"
			batch = append(batch, txn)
		}

		expectNoOverdue(ctx, m)
		m.txnRepo.On("ListDue", ctx, testNow, 10).Return(batch, nil)
		m.gateway.On("PollStatus", ctx, "ext-1").Return(gw.PaymentPending, nil).Times(6)
		// A fresh instance per lookup keeps the concurrent workers independent
		m.txnRepo.On("GetByExternalReference", ctx, "ext-1").
			Return(func(context.Context, string) *entity.Transaction { return dueGatewayTxn() }, nil).Times(6)
		m.txnRepo.On("UpdateGuarded", ctx, mock.AnythingOfType("*entity.Transaction")).Return(nil).Times(6)

		p.Sweep(ctx)
	})
}

func TestStartStop(t *testing.T) {
	p, m := newTestPoller(t, Config{Interval: 10 * time.Millisecond, BatchSize: 5, Workers: 1})

	m.txnRepo.On("ListOverdue", mock.Anything, testNow, mock.AnythingOfType("int")).
		Return([]*entity.Transaction{}, nil).Maybe()
	m.manualRepo.On("ListOverdue", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
		Return([]*entity.ManualPaymentRecord{}, nil).Maybe()
	m.txnRepo.On("ListDue", mock.Anything, testNow, 5).
		Return([]*entity.Transaction{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	time.Sleep(35 * time.Millisecond)
	p.Stop()

	// Stop is idempotent and must not deadlock
	p.Stop()
}

func TestConfigDefaults(t *testing.T) {
	p, _ := newTestPoller(t, Config{})

	assert.Equal(t, DefaultConfig().Interval, p.cfg.Interval)
	assert.Equal(t, DefaultConfig().BatchSize, p.cfg.BatchSize)
	assert.Equal(t, DefaultConfig().Workers, p.cfg.Workers)
}
