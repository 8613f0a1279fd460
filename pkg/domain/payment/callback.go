package payment

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ResultCodeSuccess is the processor's success sentinel in STK callbacks.
const ResultCodeSuccess = 0

// CallbackEnvelope is the wire shape of the processor's asynchronous STK
// callback notification.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

// CallbackBody wraps the stkCallback payload.
type CallbackBody struct {
	STKCallback STKCallback `json:"stkCallback"`
}

// STKCallback reports the outcome of a previously initiated push.
// CallbackMetadata is only present on success.
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata is the processor's flat list of named key/value items.
type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem carries one metadata value. Value is a string or a JSON
// number depending on the key.
type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

// ReceiptDetails is the strongly typed view of a successful callback's
// metadata. Keys this system does not model land in Unrecognized; they are
// never an error because the processor adds items without versioning.
type ReceiptDetails struct {
	Amount          decimal.Decimal
	ReceiptNumber   string
	PhoneNumber     string
	TransactionDate time.Time
	Unrecognized    map[string]any
}

// transactionDateLayout matches Daraja's numeric timestamp, e.g. 20250901123045.
const transactionDateLayout = "20060102150405"

// Details extracts the known metadata items into a typed structure. Safe to
// call on a nil receiver (failure callbacks carry no metadata).
func (m *CallbackMetadata) Details() *ReceiptDetails {
	d := &ReceiptDetails{Unrecognized: map[string]any{}}
	if m == nil {
		return d
	}
	for _, item := range m.Item {
		switch item.Name {
		case "Amount":
			d.Amount = toDecimal(item.Value)
		case "MpesaReceiptNumber":
			d.ReceiptNumber = toString(item.Value)
		case "PhoneNumber":
			d.PhoneNumber = toString(item.Value)
		case "TransactionDate":
			if t, err := time.Parse(transactionDateLayout, toString(item.Value)); err == nil {
				d.TransactionDate = t
			}
		default:
			d.Unrecognized[item.Name] = item.Value
		}
	}
	return d
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		if dec, err := decimal.NewFromString(n); err == nil {
			return dec
		}
	}
	return decimal.Zero
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; phone numbers and dates are
		// integral and must not render in exponent notation.
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
