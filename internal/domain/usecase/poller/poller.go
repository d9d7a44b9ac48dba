package poller

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	gw "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/usecase/reconciliation"
)

// Config holds the poller's scheduling knobs
type Config struct {
	// Interval between sweep ticks
	Interval time.Duration
	// BatchSize caps how many due transactions one sweep picks up
	BatchSize int
	// Workers bounds how many transactions are driven concurrently.
	// Concurrency is per transaction; the engine's compare-and-set guard
	// keeps overlapping signals for the same transaction safe.
	Workers int
}

// DefaultConfig returns the default poller configuration
func DefaultConfig() Config {
	return Config{
		Interval:  2 * time.Second,
		BatchSize: 100,
		Workers:   8,
	}
}

// StatusPoller periodically re-checks in-flight transactions and feeds
// external observations back into the reconciliation engine. It never
// mutates transaction state itself; all decisions happen inside the engine's
// transition functions, so the state machine stays testable without I/O.
type StatusPoller struct {
	engine          *reconciliation.Engine
	transactionRepo persistence.TransactionRepository
	gatewayClient   gw.PaymentGatewayClient
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	cfg             Config

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewStatusPoller creates a new status poller
func NewStatusPoller(
	engine *reconciliation.Engine,
	transactionRepo persistence.TransactionRepository,
	gatewayClient gw.PaymentGatewayClient,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *StatusPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &StatusPoller{
		engine:          engine,
		transactionRepo: transactionRepo,
		gatewayClient:   gatewayClient,
		timeProvider:    timeProvider,
		logger:          logger,
		cfg:             cfg,
		stopCh:          make(chan struct{}),
	}
}

// Start launches the background sweep loop. It returns immediately; call
// Stop (or cancel the context) to terminate.
func (p *StatusPoller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()

		p.logger.Info("Status poller started", map[string]any{
			"interval":   p.cfg.Interval.String(),
			"batch_size": p.cfg.BatchSize,
			"workers":    p.cfg.Workers,
		})

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("Status poller stopped by context", nil)
				return
			case <-p.stopCh:
				p.logger.Info("Status poller stopped", nil)
				return
			case <-ticker.C:
				p.Sweep(ctx)
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for in-flight work to finish
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
}

// Sweep runs one full polling pass: expire overdue transactions, then drive
// every due in-flight transaction one step forward. Exported so tests and
// operational tooling can run a deterministic single pass.
func (p *StatusPoller) Sweep(ctx context.Context) {
	if expired, err := p.engine.ExpireOverdue(ctx); err != nil {
		p.logger.Warn("Expiry sweep failed", map[string]any{
			"error": err.Error(),
		})
	} else if expired > 0 {
		p.logger.Info("Expired overdue transactions", map[string]any{
			"count": expired,
		})
	}

	now := p.timeProvider.Now()
	due, err := p.transactionRepo.ListDue(ctx, now, p.cfg.BatchSize)
	if err != nil {
		p.logger.Warn("Failed to list due transactions", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if len(due) == 0 {
		return
	}

	// Fan out at per-transaction granularity; a small pool bounds the
	// concurrent external calls.
	jobs := make(chan *entity.Transaction)
	var workers sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for txn := range jobs {
				p.drive(ctx, txn)
			}
		}()
	}
	for _, txn := range due {
		select {
		case jobs <- txn:
		case <-ctx.Done():
			close(jobs)
			workers.Wait()
			return
		}
	}
	close(jobs)
	workers.Wait()
}

// drive advances a single transaction by one observation. Terminal
// transactions fall out of ListDue because their NextPollAt is cleared; this
// is the poller's resource cleanup.
func (p *StatusPoller) drive(ctx context.Context, txn *entity.Transaction) {
	switch txn.Status {
	case entity.StatusAwaitingPayment:
		if txn.Channel != entity.ChannelGateway {
			return
		}
		p.pollGateway(ctx, txn)
	case entity.StatusPaymentConfirmed, entity.StatusProcessingCasino:
		if err := p.engine.ProcessCasinoCredit(ctx, txn.ID); err != nil {
			p.logger.Warn("Casino credit step failed", map[string]any{
				"transaction_id": txn.ID,
				"error":          err.Error(),
			})
		}
	}
}

// pollGateway fetches the gateway status and feeds it into the engine
func (p *StatusPoller) pollGateway(ctx context.Context, txn *entity.Transaction) {
	status, err := p.gatewayClient.PollStatus(ctx, txn.ExternalReference)
	if err != nil {
		// Transient poll failures are retried on the next tick; the
		// transaction's gateway deadline bounds the overall wait.
		p.logger.Warn("Gateway poll failed", map[string]any{
			"transaction_id":     txn.ID,
			"external_reference": txn.ExternalReference,
			"error":              err.Error(),
		})
		return
	}
	if err := p.engine.ObserveGatewayStatus(ctx, txn.ExternalReference, status); err != nil {
		p.logger.Warn("Gateway observation failed", map[string]any{
			"transaction_id": txn.ID,
			"error":          err.Error(),
		})
	}
}
