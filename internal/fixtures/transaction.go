package fixtures

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wanjalab/pesaflow/pkg/domain"
	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/dto"
)

// TransactionRepo is an in-memory transaction store.
type TransactionRepo struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*dto.TransactionRead

	// Errs, when set, is returned by every method.
	Errs error
}

// NewTransactionRepo creates an empty in-memory transaction store.
func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{txs: make(map[uuid.UUID]*dto.TransactionRead)}
}

func (r *TransactionRepo) Create(_ context.Context, create dto.TransactionCreate) error {
	if r.Errs != nil {
		return r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.txs[create.ID] = &dto.TransactionRead{
		ID:          create.ID,
		UserID:      create.UserID,
		PhoneNumber: create.PhoneNumber,
		Amount:      create.Amount,
		Direction:   create.Direction,
		Description: create.Description,
		Status:      create.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (r *TransactionRepo) Get(_ context.Context, id uuid.UUID) (*dto.TransactionRead, error) {
	if r.Errs != nil {
		return nil, r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *tx
	return &copied, nil
}

func (r *TransactionRepo) GetByCheckoutRequestID(_ context.Context, checkoutRequestID string) (*dto.TransactionRead, error) {
	if r.Errs != nil {
		return nil, r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.CheckoutRequestID != nil && *tx.CheckoutRequestID == checkoutRequestID {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *TransactionRepo) Update(_ context.Context, id uuid.UUID, update dto.TransactionUpdate) error {
	if r.Errs != nil {
		return r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if update.MerchantRequestID != nil {
		tx.MerchantRequestID = update.MerchantRequestID
	}
	if update.CheckoutRequestID != nil {
		tx.CheckoutRequestID = update.CheckoutRequestID
	}
	tx.UpdatedAt = time.Now()
	return nil
}

func (r *TransactionRepo) Finalize(_ context.Context, id uuid.UUID, at time.Time, update dto.TransactionFinalize) (bool, error) {
	if r.Errs != nil {
		return false, r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.Status != string(domainpayment.StatusPending) {
		return false, nil
	}
	tx.Status = update.Status
	tx.ReceiptReference = update.ReceiptReference
	tx.FailureDetail = update.FailureDetail
	tx.UpdatedAt = at
	return true, nil
}

func (r *TransactionRepo) ListStalePending(_ context.Context, cutoff time.Time) ([]*dto.TransactionRead, error) {
	if r.Errs != nil {
		return nil, r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*dto.TransactionRead
	for _, tx := range r.txs {
		if tx.Status == string(domainpayment.StatusPending) && tx.CreatedAt.Before(cutoff) {
			copied := *tx
			stale = append(stale, &copied)
		}
	}
	return stale, nil
}

// Seed inserts a transaction directly, for tests that need a preexisting row.
func (r *TransactionRepo) Seed(read dto.TransactionRead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := read
	r.txs[read.ID] = &copied
}
