package fixtures

import (
	"context"
	"sync"

	"github.com/wanjalab/pesaflow/pkg/provider"
)

// Processor is a canned-response payment processor.
type Processor struct {
	mu       sync.Mutex
	requests []provider.STKPushRequest

	// Response and Err control what InitiateSTKPush returns.
	Response *provider.STKPushResponse
	Err      error
}

// AcceptedProcessor returns a Processor that accepts every push.
func AcceptedProcessor() *Processor {
	return &Processor{
		Response: &provider.STKPushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   "ws_CO_191220191020363925",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Success. Request accepted for processing",
		},
	}
}

func (p *Processor) Authenticate(context.Context) (string, error) {
	return "test-token", nil
}

func (p *Processor) InitiateSTKPush(_ context.Context, req provider.STKPushRequest) (*provider.STKPushResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Response, nil
}

// Requests returns the push requests received so far.
func (p *Processor) Requests() []provider.STKPushRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]provider.STKPushRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
