package payment

import (
	"context"
	"fmt"
	"time"

	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/dto"
)

// timeoutDetail marks transactions failed by the reconciliation sweep.
const timeoutDetail = "Timeout"

// SweepPending fails transactions that stayed pending beyond the configured
// window. Each transition is the same per-row compare-and-swap the callback
// path uses, so a callback racing the sweep still yields exactly one terminal
// state. Returns the number of transactions swept.
func (s *Service) SweepPending(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.pendingTimeout)
	stale, err := s.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale pending: %w", err)
	}

	detail := timeoutDetail
	swept := 0
	for _, tx := range stale {
		now := s.now()
		ok, err := s.repo.Finalize(ctx, tx.ID, now, dto.TransactionFinalize{
			Status:        string(domainpayment.StatusFailed),
			FailureDetail: &detail,
		})
		if err != nil {
			s.logger.Error("sweep finalize failed", "transaction_id", tx.ID, "error", err)
			continue
		}
		if !ok {
			// A callback won the race since the list query.
			continue
		}
		swept++
		checkout := ""
		if tx.CheckoutRequestID != nil {
			checkout = *tx.CheckoutRequestID
		}
		s.logger.Warn("transaction timed out waiting for callback",
			"transaction_id", tx.ID,
			"checkout_request_id", checkout,
			"pending_since", tx.CreatedAt,
		)
		s.emit(ctx, failedEvent(tx.ID, checkout, 0, timeoutDetail, now))
	}
	return swept, nil
}

// RunSweeper runs SweepPending on the given interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.logger.Info("reconciliation sweeper started",
		"interval", interval,
		"pending_timeout", s.pendingTimeout,
	)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reconciliation sweeper stopped")
			return
		case <-ticker.C:
			swept, err := s.SweepPending(ctx)
			if err != nil {
				s.logger.Error("reconciliation sweep failed", "error", err)
				continue
			}
			if swept > 0 {
				s.logger.Info("reconciliation sweep", "swept", swept)
			}
		}
	}
}
