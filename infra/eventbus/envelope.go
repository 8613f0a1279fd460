package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/domain/events"
)

// envelope is the wire form events take on Redis streams and Kafka.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func wrap(event domain.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: payload})
}

// unwrap decodes an envelope back into a typed domain event.
func unwrap(data []byte) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	switch env.Type {
	case events.EventTypePaymentCompleted:
		var e events.PaymentCompleted
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case events.EventTypePaymentFailed:
		var e events.PaymentFailed
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}
