// Package provider defines contracts for external collaborators.
package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// STKPushRequest asks the processor to prompt a payer's device.
// PhoneNumber must already be in the processor's 254XXXXXXXXX format.
type STKPushRequest struct {
	PhoneNumber      string
	Amount           decimal.Decimal
	AccountReference string
	TransactionDesc  string
}

// STKPushResponse is the processor's synchronous answer to a push
// initiation. MerchantRequestID and CheckoutRequestID are the correlation
// pair matched against the eventual asynchronous callback. ResponseCode "0"
// means the prompt was accepted; the payment outcome arrives later.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the processor accepted the push initiation.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// Processor is the external payment network client. It is an opaque
// authority: this system interprets and records its responses, never
// reimplements them.
type Processor interface {
	// Authenticate obtains a short-lived access token.
	Authenticate(ctx context.Context) (string, error)

	// InitiateSTKPush starts a push-payment prompt.
	InitiateSTKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
}
