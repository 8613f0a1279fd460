package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/domain/events"
	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/dto"
)

// HandleCallback reconciles an asynchronous processor notification with the
// matching transaction. It is idempotent: unknown correlation ids and
// already-terminal transactions are no-ops, and the terminal transition is a
// compare-and-swap keyed on the row still being pending, so duplicate and
// out-of-order deliveries produce exactly one transition.
//
// The returned error is for internal logging only. The HTTP boundary always
// acknowledges the processor regardless; see webapi/payment.
func (s *Service) HandleCallback(
	ctx context.Context,
	cb domainpayment.STKCallback,
) error {
	log := s.logger.With("checkout_request_id", cb.CheckoutRequestID)

	tx, err := s.repo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		// Telling the processor to retry would not change the outcome.
		log.Warn("callback for unknown correlation id", "result_code", cb.ResultCode)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup transaction: %w", err)
	}
	if domainpayment.Status(tx.Status).Terminal() {
		log.Debug("callback replay for terminal transaction", "status", tx.Status)
		return nil
	}

	now := s.now()
	if cb.ResultCode == domainpayment.ResultCodeSuccess {
		details := cb.CallbackMetadata.Details()
		if len(details.Unrecognized) > 0 {
			log.Debug("unrecognized callback metadata items", "items", details.Unrecognized)
		}
		ok, err := s.repo.Finalize(ctx, tx.ID, now, dto.TransactionFinalize{
			Status:           string(domainpayment.StatusCompleted),
			ReceiptReference: &details.ReceiptNumber,
		})
		if err != nil {
			return fmt.Errorf("finalize completed: %w", err)
		}
		if !ok {
			log.Debug("lost finalize race, transaction already terminal")
			return nil
		}
		log.Info("transaction completed", "transaction_id", tx.ID, "receipt", details.ReceiptNumber)
		s.emit(ctx, events.PaymentCompleted{
			TransactionID:     tx.ID,
			CheckoutRequestID: cb.CheckoutRequestID,
			ReceiptReference:  details.ReceiptNumber,
			Amount:            tx.Amount,
			OccurredAt:        now,
		})
		return nil
	}

	detail := fmt.Sprintf("%d: %s", cb.ResultCode, cb.ResultDesc)
	ok, err := s.repo.Finalize(ctx, tx.ID, now, dto.TransactionFinalize{
		Status:        string(domainpayment.StatusFailed),
		FailureDetail: &detail,
	})
	if err != nil {
		return fmt.Errorf("finalize failed: %w", err)
	}
	if !ok {
		log.Debug("lost finalize race, transaction already terminal")
		return nil
	}
	log.Info("transaction failed", "transaction_id", tx.ID, "detail", detail)
	s.emit(ctx, failedEvent(tx.ID, cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc, now))
	return nil
}

func failedEvent(
	txID uuid.UUID,
	checkoutRequestID string,
	resultCode int,
	reason string,
	at time.Time,
) events.PaymentFailed {
	return events.PaymentFailed{
		TransactionID:     txID,
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        resultCode,
		Reason:            reason,
		OccurredAt:        at,
	}
}
