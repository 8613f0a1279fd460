package session

import (
	"time"

	"github.com/wanjalab/pesaflow/pkg/dto"
)

// CreateSessionRequest is the request body for creating a QR session.
type CreateSessionRequest struct {
	OwnerPhone string `json:"owner_phone" validate:"required" example:"0712345678"`
	Amount     string `json:"amount,omitempty" example:"150.00"`
	Kind       string `json:"kind" validate:"required,oneof=send receive" example:"receive"`
}

// SessionResponse is the API view of a QR session.
type SessionResponse struct {
	ID         string     `json:"id"`
	OwnerPhone string     `json:"owner_phone"`
	Amount     string     `json:"amount,omitempty"`
	Kind       string     `json:"kind"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

// SessionStatusResponse reports whether a session is still valid for use.
type SessionStatusResponse struct {
	Valid   bool             `json:"valid"`
	Session *SessionResponse `json:"session,omitempty"`
}

func toResponse(read *dto.SessionRead) *SessionResponse {
	resp := &SessionResponse{
		ID:         read.ID,
		OwnerPhone: read.OwnerPhone,
		Kind:       read.Kind,
		CreatedAt:  read.CreatedAt,
		ExpiresAt:  read.ExpiresAt,
		UsedAt:     read.UsedAt,
	}
	if read.Amount != nil {
		resp.Amount = read.Amount.String()
	}
	return resp
}
