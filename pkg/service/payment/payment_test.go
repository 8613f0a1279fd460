package payment_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraeventbus "github.com/wanjalab/pesaflow/infra/eventbus"
	"github.com/wanjalab/pesaflow/internal/fixtures"
	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/domain/events"
	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/provider"
	paymentsvc "github.com/wanjalab/pesaflow/pkg/service/payment"
)

// stubProcessor is a canned-response Processor.
type stubProcessor struct {
	mu       sync.Mutex
	requests []provider.STKPushRequest
	resp     *provider.STKPushResponse
	err      error
}

func (p *stubProcessor) Authenticate(context.Context) (string, error) {
	return "test-token", nil
}

func (p *stubProcessor) InitiateSTKPush(_ context.Context, req provider.STKPushRequest) (*provider.STKPushResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func acceptedResponse() *provider.STKPushResponse {
	return &provider.STKPushResponse{
		MerchantRequestID:   "29115-34620561-1",
		CheckoutRequestID:   "ws_CO_191220191020363925",
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}
}

type testEnv struct {
	repo      *fixtures.TransactionRepo
	processor *stubProcessor
	bus       *infraeventbus.MemoryEventBus
	svc       *paymentsvc.Service
}

func newTestEnv(processor *stubProcessor) *testEnv {
	repo := fixtures.NewTransactionRepo()
	bus := infraeventbus.NewWithMemory(slog.Default())
	return &testEnv{
		repo:      repo,
		processor: processor,
		bus:       bus,
		svc:       paymentsvc.New(repo, processor, bus, 30*time.Second, 3*time.Minute, slog.Default()),
	}
}

func initiateInput() paymentsvc.InitiateInput {
	return paymentsvc.InitiateInput{
		UserID:      uuid.New(),
		PhoneNumber: "0712345678",
		Amount:      decimal.NewFromInt(150),
		Reference:   "INV-001",
		Description: "Electricity bill",
	}
}

func TestInitiate_Success(t *testing.T) {
	env := newTestEnv(&stubProcessor{resp: acceptedResponse()})

	result, err := env.svc.Initiate(context.Background(), initiateInput())
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", result.MerchantRequestID)
	assert.NotEmpty(t, result.CustomerMessage)

	// The processor received the normalized number, not the local form.
	require.Len(t, env.processor.requests, 1)
	assert.Equal(t, "254712345678", env.processor.requests[0].PhoneNumber)

	read, err := env.repo.Get(context.Background(), result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, string(domainpayment.StatusPending), read.Status)
	require.NotNil(t, read.CheckoutRequestID)
	assert.Equal(t, "ws_CO_191220191020363925", *read.CheckoutRequestID)
}

func TestInitiate_InvalidInput(t *testing.T) {
	env := newTestEnv(&stubProcessor{resp: acceptedResponse()})

	in := initiateInput()
	in.Amount = decimal.Zero
	_, err := env.svc.Initiate(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrAmountMustBePositive)

	in = initiateInput()
	in.PhoneNumber = "12345"
	_, err = env.svc.Initiate(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)

	// Nothing reached the processor.
	assert.Empty(t, env.processor.requests)
}

func TestInitiate_ProcessorError(t *testing.T) {
	env := newTestEnv(&stubProcessor{err: errors.New("connection refused")})

	_, err := env.svc.Initiate(context.Background(), initiateInput())
	require.ErrorIs(t, err, domain.ErrProcessorUnavailable)

	// The transaction fails immediately: no callback will ever arrive for a
	// push the processor never accepted.
	stale, err := env.repo.ListStalePending(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)

	published := env.bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypePaymentFailed, published[0].Type())
}

func TestInitiate_PushRejected(t *testing.T) {
	env := newTestEnv(&stubProcessor{resp: &provider.STKPushResponse{
		ResponseCode:        "1",
		ResponseDescription: "Invalid Access Token",
	}})

	_, err := env.svc.Initiate(context.Background(), initiateInput())
	require.ErrorIs(t, err, domain.ErrPushRejected)

	stale, err := env.repo.ListStalePending(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)
}
