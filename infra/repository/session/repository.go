// Package session implements the QR session store on gorm/Postgres.
package session

import (
	"context"
	"time"

	"gorm.io/gorm"

	infrarepo "github.com/wanjalab/pesaflow/infra/repository"
	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/dto"
	repo "github.com/wanjalab/pesaflow/pkg/repository/session"
)

type repository struct {
	db *gorm.DB
}

// New creates a session repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements session.Repository.
func (r *repository) Create(ctx context.Context, create dto.SessionCreate) error {
	row := mapCreateDTOToModel(create)
	return r.db.WithContext(ctx).Create(&row).Error
}

// Get implements session.Repository.
func (r *repository) Get(ctx context.Context, id string) (*dto.SessionRead, error) {
	var row QRSession
	if err := r.db.WithContext(
		ctx,
	).First(
		&row,
		"id = ?",
		id,
	).Error; err != nil {
		return nil, infrarepo.MapGormError(err, domain.ErrSessionNotFound)
	}
	return mapModelToReadDTO(&row), nil
}

// MarkUsed implements session.Repository. The WHERE clause is the whole
// consumption invariant: unused and unexpired at write time.
func (r *repository) MarkUsed(
	ctx context.Context,
	id string,
	usedAt time.Time,
) (bool, error) {
	res := r.db.WithContext(
		ctx,
	).Model(
		&QRSession{},
	).Where(
		"id = ? AND used_at IS NULL AND expires_at > ?",
		id,
		usedAt,
	).Update(
		"used_at",
		usedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --- Mappers ---

func mapCreateDTOToModel(create dto.SessionCreate) QRSession {
	return QRSession{
		ID:         create.ID,
		OwnerPhone: create.OwnerPhone,
		Amount:     create.Amount,
		Kind:       create.Kind,
		CreatedAt:  create.CreatedAt,
		ExpiresAt:  create.ExpiresAt,
	}
}

func mapModelToReadDTO(row *QRSession) *dto.SessionRead {
	return &dto.SessionRead{
		ID:         row.ID,
		OwnerPhone: row.OwnerPhone,
		Amount:     row.Amount,
		Kind:       row.Kind,
		CreatedAt:  row.CreatedAt,
		ExpiresAt:  row.ExpiresAt,
		UsedAt:     row.UsedAt,
	}
}
