// Package eventbus defines the contract for publishing and subscribing to
// domain events.
package eventbus

import (
	"context"

	"github.com/wanjalab/pesaflow/pkg/domain"
)

// HandlerFunc consumes a single event.
type HandlerFunc func(ctx context.Context, event domain.Event) error

// Bus dispatches domain events to registered handlers. Drivers live in
// infra/eventbus.
type Bus interface {
	Emit(ctx context.Context, event domain.Event) error
	Register(eventType string, handler HandlerFunc)
}
