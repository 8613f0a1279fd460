// Package payment provides business logic for push-payment initiation and
// asynchronous callback reconciliation.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wanjalab/pesaflow/pkg/domain"
	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/dto"
	"github.com/wanjalab/pesaflow/pkg/eventbus"
	"github.com/wanjalab/pesaflow/pkg/provider"
	txrepo "github.com/wanjalab/pesaflow/pkg/repository/transaction"
)

// Service initiates push payments and reconciles processor callbacks.
type Service struct {
	repo           txrepo.Repository
	processor      provider.Processor
	bus            eventbus.Bus
	logger         *slog.Logger
	initTimeout    time.Duration
	pendingTimeout time.Duration
	now            func() time.Time
}

// New creates a Service. initTimeout bounds the processor's synchronous
// push-initiation call; pendingTimeout is the window after which the sweep
// fails transactions whose callback never arrived.
func New(
	repo txrepo.Repository,
	processor provider.Processor,
	bus eventbus.Bus,
	initTimeout time.Duration,
	pendingTimeout time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:           repo,
		processor:      processor,
		bus:            bus,
		logger:         logger,
		initTimeout:    initTimeout,
		pendingTimeout: pendingTimeout,
		now:            time.Now,
	}
}

// InitiateInput carries the parameters for a push payment.
type InitiateInput struct {
	UserID      uuid.UUID
	PhoneNumber string
	Amount      decimal.Decimal
	Direction   domainpayment.Direction
	Reference   string
	Description string
}

// InitiateResult reports a successfully initiated push. The outcome arrives
// later via callback; the transaction stays pending until then.
type InitiateResult struct {
	TransactionID     uuid.UUID
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
}

// Initiate starts a push-payment prompt. It creates a pending transaction,
// calls the processor, and records the correlation pair. Any initiation
// failure, rejection, network error or timeout, marks the transaction failed
// immediately: no callback will ever arrive for a push the processor never
// accepted, so leaving it pending would strand it.
func (s *Service) Initiate(
	ctx context.Context,
	in InitiateInput,
) (*InitiateResult, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrAmountMustBePositive
	}
	phone, err := domainpayment.NormalizePhoneNumber(in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	direction := in.Direction
	if direction == "" {
		direction = domainpayment.DirectionSent
	}

	txID := uuid.New()
	if err := s.repo.Create(ctx, dto.TransactionCreate{
		ID:          txID,
		UserID:      in.UserID,
		PhoneNumber: phone,
		Amount:      in.Amount,
		Direction:   string(direction),
		Description: in.Description,
		Status:      string(domainpayment.StatusPending),
	}); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.initTimeout)
	defer cancel()
	resp, err := s.processor.InitiateSTKPush(pushCtx, provider.STKPushRequest{
		PhoneNumber:      phone,
		Amount:           in.Amount,
		AccountReference: in.Reference,
		TransactionDesc:  in.Description,
	})
	if err != nil {
		s.failInitiation(ctx, txID, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessorUnavailable, err)
	}
	if !resp.Accepted() {
		s.failInitiation(ctx, txID, resp.ResponseDescription)
		return nil, fmt.Errorf("%w: %s", domain.ErrPushRejected, resp.ResponseDescription)
	}

	if err := s.repo.Update(ctx, txID, dto.TransactionUpdate{
		MerchantRequestID: &resp.MerchantRequestID,
		CheckoutRequestID: &resp.CheckoutRequestID,
	}); err != nil {
		return nil, fmt.Errorf("record correlation id: %w", err)
	}

	s.logger.Info("stk push initiated",
		"transaction_id", txID,
		"checkout_request_id", resp.CheckoutRequestID,
	)
	return &InitiateResult{
		TransactionID:     txID,
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}

// GetTransaction returns a transaction by id for status polling.
func (s *Service) GetTransaction(
	ctx context.Context,
	id uuid.UUID,
) (*dto.TransactionRead, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) failInitiation(ctx context.Context, txID uuid.UUID, detail string) {
	ok, err := s.repo.Finalize(ctx, txID, s.now(), dto.TransactionFinalize{
		Status:        string(domainpayment.StatusFailed),
		FailureDetail: &detail,
	})
	if err != nil {
		s.logger.Error("failed to mark transaction failed after initiation error",
			"transaction_id", txID, "error", err)
		return
	}
	if ok {
		s.emit(ctx, failedEvent(txID, "", 0, detail, s.now()))
	}
}

func (s *Service) emit(ctx context.Context, event domain.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		s.logger.Error("failed to emit event", "type", event.Type(), "error", err)
	}
}
