package payment

import (
	"time"

	"github.com/wanjalab/pesaflow/pkg/dto"
)

// STKPushRequest is the request body for initiating an STK push prompt.
type STKPushRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required" example:"0712345678"`
	Amount      string `json:"amount" validate:"required" example:"150.00"`
	Direction   string `json:"direction,omitempty" validate:"omitempty,oneof=sent received bill airtime withdraw" example:"bill"`
	Reference   string `json:"reference,omitempty" example:"INV-2024-001"`
	Description string `json:"description,omitempty" example:"Electricity bill"`
}

// STKPushResponse acknowledges an accepted push. The payment outcome arrives
// asynchronously; poll the transaction for its terminal status.
type STKPushResponse struct {
	TransactionID     string `json:"transaction_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
	CustomerMessage   string `json:"customer_message,omitempty"`
}

// TransactionResponse is the API view of a transaction.
type TransactionResponse struct {
	ID                string    `json:"id"`
	PhoneNumber       string    `json:"phone_number"`
	Amount            string    `json:"amount"`
	Direction         string    `json:"direction"`
	Description       string    `json:"description,omitempty"`
	Status            string    `json:"status"`
	MerchantRequestID *string   `json:"merchant_request_id,omitempty"`
	CheckoutRequestID *string   `json:"checkout_request_id,omitempty"`
	ReceiptReference  *string   `json:"receipt_reference,omitempty"`
	FailureDetail     *string   `json:"failure_detail,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toResponse(read *dto.TransactionRead) *TransactionResponse {
	return &TransactionResponse{
		ID:                read.ID.String(),
		PhoneNumber:       read.PhoneNumber,
		Amount:            read.Amount.String(),
		Direction:         read.Direction,
		Description:       read.Description,
		Status:            read.Status,
		MerchantRequestID: read.MerchantRequestID,
		CheckoutRequestID: read.CheckoutRequestID,
		ReceiptReference:  read.ReceiptReference,
		FailureDetail:     read.FailureDetail,
		CreatedAt:         read.CreatedAt,
		UpdatedAt:         read.UpdatedAt,
	}
}
