// Package transaction implements the payment transaction store on
// gorm/Postgres.
package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	infrarepo "github.com/wanjalab/pesaflow/infra/repository"
	"github.com/wanjalab/pesaflow/pkg/domain"
	domainpayment "github.com/wanjalab/pesaflow/pkg/domain/payment"
	"github.com/wanjalab/pesaflow/pkg/dto"
	repo "github.com/wanjalab/pesaflow/pkg/repository/transaction"
)

type repository struct {
	db *gorm.DB
}

// New creates a transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements transaction.Repository.
func (r *repository) Create(ctx context.Context, create dto.TransactionCreate) error {
	row := mapCreateDTOToModel(create)
	return r.db.WithContext(ctx).Create(&row).Error
}

// Get implements transaction.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*dto.TransactionRead, error) {
	var row Transaction
	if err := r.db.WithContext(
		ctx,
	).First(
		&row,
		"id = ?",
		id,
	).Error; err != nil {
		return nil, infrarepo.MapGormError(err, domain.ErrTransactionNotFound)
	}
	return mapModelToReadDTO(&row), nil
}

// GetByCheckoutRequestID implements transaction.Repository.
func (r *repository) GetByCheckoutRequestID(
	ctx context.Context,
	checkoutRequestID string,
) (*dto.TransactionRead, error) {
	var row Transaction
	if err := r.db.WithContext(
		ctx,
	).Where(
		"checkout_request_id = ?",
		checkoutRequestID,
	).First(
		&row,
	).Error; err != nil {
		return nil, infrarepo.MapGormError(err, domain.ErrTransactionNotFound)
	}
	return mapModelToReadDTO(&row), nil
}

// Update implements transaction.Repository.
func (r *repository) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.TransactionUpdate,
) error {
	updates := make(map[string]any)
	if update.MerchantRequestID != nil {
		updates["merchant_request_id"] = *update.MerchantRequestID
	}
	if update.CheckoutRequestID != nil {
		updates["checkout_request_id"] = *update.CheckoutRequestID
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(
		ctx,
	).Model(
		&Transaction{},
	).Where(
		"id = ?",
		id,
	).Updates(
		updates,
	).Error
}

// Finalize implements transaction.Repository. The status predicate in the
// WHERE clause makes the terminal transition exactly-once under concurrent
// duplicate callbacks and sweep races.
func (r *repository) Finalize(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
	update dto.TransactionFinalize,
) (bool, error) {
	updates := map[string]any{
		"status":     update.Status,
		"updated_at": at,
	}
	if update.ReceiptReference != nil {
		updates["receipt_reference"] = *update.ReceiptReference
	}
	if update.FailureDetail != nil {
		updates["failure_detail"] = *update.FailureDetail
	}
	res := r.db.WithContext(
		ctx,
	).Model(
		&Transaction{},
	).Where(
		"id = ? AND status = ?",
		id,
		domainpayment.StatusPending,
	).Updates(
		updates,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListStalePending implements transaction.Repository.
func (r *repository) ListStalePending(
	ctx context.Context,
	cutoff time.Time,
) ([]*dto.TransactionRead, error) {
	var rows []Transaction
	if err := r.db.WithContext(
		ctx,
	).Where(
		"status = ? AND created_at < ?",
		domainpayment.StatusPending,
		cutoff,
	).Find(
		&rows,
	).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.TransactionRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToReadDTO(&rows[i]))
	}
	return result, nil
}

// --- Mappers ---

func mapCreateDTOToModel(create dto.TransactionCreate) Transaction {
	return Transaction{
		ID:          create.ID,
		UserID:      create.UserID,
		PhoneNumber: create.PhoneNumber,
		Amount:      create.Amount,
		Direction:   create.Direction,
		Description: create.Description,
		Status:      create.Status,
	}
}

func mapModelToReadDTO(row *Transaction) *dto.TransactionRead {
	return &dto.TransactionRead{
		ID:                row.ID,
		UserID:            row.UserID,
		PhoneNumber:       row.PhoneNumber,
		Amount:            row.Amount,
		Direction:         row.Direction,
		Description:       row.Description,
		Status:            row.Status,
		MerchantRequestID: row.MerchantRequestID,
		CheckoutRequestID: row.CheckoutRequestID,
		ReceiptReference:  row.ReceiptReference,
		FailureDetail:     row.FailureDetail,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
