//go:build kafka
// +build kafka

package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/eventbus"
)

// KafkaEventBus implements the Bus interface on Kafka. One topic carries all
// payment events; consumers in the same group share processing.
type KafkaEventBus struct {
	brokers []string
	topic   string
	group   string
	writer  *kafka.Writer

	handlers    map[string][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex

	logger  *slog.Logger
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

// NewWithKafka creates a Kafka-backed event bus.
// brokers is a comma-separated list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(brokers, topic, group string, logger *slog.Logger) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if topic == "" || group == "" {
		return nil, fmt.Errorf("kafka event bus: topic and group are required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(parsed...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 20 * time.Millisecond,
	}

	return &KafkaEventBus{
		brokers:  parsed,
		topic:    topic,
		group:    group,
		writer:   writer,
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "kafka"),
	}, nil
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Register registers a handler and starts the consumer loop on first use.
func (b *KafkaEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	defer b.handlersMtx.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	if !b.started {
		b.started = true
		ctx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		b.wg.Add(1)
		go b.consume(ctx)
	}
}

// Emit publishes an event to the topic, keyed by event type so replays of
// one type stay ordered.
func (b *KafkaEventBus) Emit(ctx context.Context, event domain.Event) error {
	data, err := wrap(event)
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type()),
		Value: data,
	})
}

// Close stops the consumer loop and flushes the writer.
func (b *KafkaEventBus) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	return b.writer.Close()
}

func (b *KafkaEventBus) consume(ctx context.Context) {
	defer b.wg.Done()
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		Topic:    b.topic,
		GroupID:  b.group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close() //nolint:errcheck

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("read message failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		event, err := unwrap(msg.Value)
		if err != nil {
			b.logger.Error("failed to decode event", "offset", msg.Offset, "error", err)
			continue
		}
		b.handlersMtx.RLock()
		handlers := b.handlers[event.Type()]
		b.handlersMtx.RUnlock()
		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				b.logger.Error("event handler failed", "type", event.Type(), "error", err)
			}
		}
	}
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
