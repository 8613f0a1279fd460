package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/eventbus"
)

// RedisEventBus implements the Bus interface on Redis streams with a
// consumer group, so multiple instances share event processing.
type RedisEventBus struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string

	handlers    map[string][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex

	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates a Redis-backed event bus and starts its consumer
// loop. url is a Redis connection URL (e.g. "redis://localhost:6379").
func NewWithRedis(url, stream, group string, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" || stream == "" || group == "" {
		return nil, fmt.Errorf("redis event bus: url, stream, and group are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "redis"),
		cancel:   cancel,
	}

	// MKSTREAM so the group exists before the first Emit; BUSYGROUP on
	// restart is expected.
	if err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err(); err != nil &&
		!isBusyGroup(err) {
		cancel()
		return nil, fmt.Errorf("redis event bus: create group: %w", err)
	}

	bus.wg.Add(1)
	go bus.consume(ctx)
	return bus, nil
}

func isBusyGroup(err error) bool {
	var redisErr redis.Error
	return errors.As(err, &redisErr) &&
		len(redisErr.Error()) >= 9 && redisErr.Error()[:9] == "BUSYGROUP"
}

// Register registers a handler for a specific event type.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	defer b.handlersMtx.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to the stream.
func (b *RedisEventBus) Emit(ctx context.Context, event domain.Event) error {
	data, err := wrap(event)
	if err != nil {
		return err
	}
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(data)},
	}).Err()
}

// Close stops the consumer loop and waits for it to drain.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

func (b *RedisEventBus) consume(ctx context.Context) {
	defer b.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  []string{b.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("read group failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				b.dispatch(ctx, msg)
			}
		}
	}
}

func (b *RedisEventBus) dispatch(ctx context.Context, msg redis.XMessage) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		b.logger.Warn("message without event field", "id", msg.ID)
		b.ack(ctx, msg.ID)
		return
	}
	event, err := unwrap([]byte(raw))
	if err != nil {
		b.logger.Error("failed to decode event", "id", msg.ID, "error", err)
		b.ack(ctx, msg.ID)
		return
	}

	b.handlersMtx.RLock()
	handlers := b.handlers[event.Type()]
	b.handlersMtx.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed", "type", event.Type(), "error", err)
		}
	}
	b.ack(ctx, msg.ID)
}

func (b *RedisEventBus) ack(ctx context.Context, id string) {
	if err := b.client.XAck(ctx, b.stream, b.group, id).Err(); err != nil {
		b.logger.Error("failed to ack message", "id", id, "error", err)
	}
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
