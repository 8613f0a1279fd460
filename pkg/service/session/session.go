// Package session provides business logic for QR session lifecycle:
// creation, read-only validation, and at-most-once consumption.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanjalab/pesaflow/pkg/domain"
	domainsession "github.com/wanjalab/pesaflow/pkg/domain/session"
	"github.com/wanjalab/pesaflow/pkg/dto"
	sessionrepo "github.com/wanjalab/pesaflow/pkg/repository/session"
)

// Service manages QR sessions.
type Service struct {
	repo   sessionrepo.Repository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Service with the given store and session TTL.
func New(
	repo sessionrepo.Repository,
	ttl time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInput carries the parameters for a new QR session.
type CreateInput struct {
	OwnerPhone string
	Amount     *decimal.Decimal
	Kind       domainsession.Kind
}

// Create builds and persists a new session expiring TTL from now.
func (s *Service) Create(
	ctx context.Context,
	in CreateInput,
) (*domainsession.Session, error) {
	sess, err := domainsession.New(in.OwnerPhone, in.Amount, in.Kind, s.ttl, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, dto.SessionCreate{
		ID:         sess.ID,
		OwnerPhone: sess.OwnerPhone,
		Amount:     sess.Amount,
		Kind:       string(sess.Kind),
		CreatedAt:  sess.CreatedAt,
		ExpiresAt:  sess.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.logger.Info("qr session created",
		"session_id", sess.ID,
		"kind", sess.Kind,
		"expires_at", sess.ExpiresAt,
	)
	return sess, nil
}

// ValidateReadOnly runs the validity checks without consuming the session,
// so a still-valid QR payload can be displayed repeatedly.
func (s *Service) ValidateReadOnly(
	ctx context.Context,
	id string,
) (*dto.SessionRead, error) {
	read, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validity(read, s.now()); err != nil {
		return nil, err
	}
	return read, nil
}

// ValidateAndConsume atomically consumes a session. Under concurrent scans
// of the same id exactly one caller succeeds; the rest observe
// domain.ErrSessionAlreadyUsed. The consumption itself is a single
// conditional write in the store, never a read-then-write pair.
func (s *Service) ValidateAndConsume(
	ctx context.Context,
	id string,
) (*dto.SessionRead, error) {
	read, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := validity(read, now); err != nil {
		return nil, err
	}

	ok, err := s.repo.MarkUsed(ctx, id, now)
	if err != nil {
		return nil, fmt.Errorf("consume session: %w", err)
	}
	if !ok {
		// Lost the race, or expired between the read and the write.
		// Re-read to report the precise reason.
		read, err = s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := validity(read, s.now()); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionAlreadyUsed
	}

	s.logger.Info("qr session consumed", "session_id", id)
	read.UsedAt = &now
	return read, nil
}

func validity(read *dto.SessionRead, now time.Time) error {
	if read.UsedAt != nil {
		return domain.ErrSessionAlreadyUsed
	}
	if !now.Before(read.ExpiresAt) {
		return domain.ErrSessionExpired
	}
	return nil
}
