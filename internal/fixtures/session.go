// Package fixtures provides in-memory repository implementations shared by
// service and web API tests. The conditional writes take a lock so the fakes
// preserve the same atomicity the SQL implementations get from conditional
// UPDATEs.
package fixtures

import (
	"context"
	"sync"
	"time"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/dto"
)

// SessionRepo is an in-memory session store.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*dto.SessionRead

	// Errs, when set, is returned by every method.
	Errs error
}

// NewSessionRepo creates an empty in-memory session store.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*dto.SessionRead)}
}

func (r *SessionRepo) Create(_ context.Context, create dto.SessionCreate) error {
	if r.Errs != nil {
		return r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[create.ID] = &dto.SessionRead{
		ID:         create.ID,
		OwnerPhone: create.OwnerPhone,
		Amount:     create.Amount,
		Kind:       create.Kind,
		CreatedAt:  create.CreatedAt,
		ExpiresAt:  create.ExpiresAt,
	}
	return nil
}

func (r *SessionRepo) Get(_ context.Context, id string) (*dto.SessionRead, error) {
	if r.Errs != nil {
		return nil, r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (r *SessionRepo) MarkUsed(_ context.Context, id string, usedAt time.Time) (bool, error) {
	if r.Errs != nil {
		return false, r.Errs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok || sess.UsedAt != nil || !usedAt.Before(sess.ExpiresAt) {
		return false, nil
	}
	at := usedAt
	sess.UsedAt = &at
	return true, nil
}
