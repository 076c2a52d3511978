package messaging

import (
	"context"
	"log/slog"
	"math/big"
	"sync"

	"github.com/pk910/pg-onchain-weights/internal/shared/events"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// TopicPrefix namespaces per-ledger delivery topics.
const TopicPrefix = "bridge."

// Topic returns the delivery topic of one dependent ledger.
func Topic(ledgerID string) string {
	return TopicPrefix + ledgerID
}

// Delivery is one bridge message as observed on the dependent ledger.
// Caller is the transport-level direct caller; ReportedSender is only set by
// the push transport class, whose local receiver relays the remote origin.
// Delivery is best-effort, unordered across ledgers, and possibly duplicated;
// consumers must stay idempotent.
type Delivery struct {
	Envelope       events.Envelope
	Caller         identity.Address
	ReportedSender identity.Address
	Value          *big.Int
	GasLimit       uint64
}

// Bus is the message fabric between bridge adapters and ledger executors.
// Current implementation is in-process publish/subscribe while runtime wiring
// is finalized for external brokers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Delivery
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan Delivery),
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, delivery Delivery) error {
	b.mu.RLock()
	subs := append([]chan Delivery(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- delivery:
		default:
			b.logger.Warn("dropping delivery for slow subscriber",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", delivery.Envelope.EventID,
			)
		}
	}

	b.logger.Info("delivery published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", delivery.Envelope.EventID,
		"event_type", delivery.Envelope.EventType,
	)
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, Delivery) error,
) error {
	ch := make(chan Delivery, 128)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case delivery := <-ch:
				if err := handler(ctx, delivery); err != nil {
					b.logger.Error("delivery handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", delivery.Envelope.EventID,
						"event_type", delivery.Envelope.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target chan Delivery) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan Delivery, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
