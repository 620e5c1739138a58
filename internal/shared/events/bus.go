package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/journey-app/server/internal/utils/requestctx"
)

// Bus fans domain events (membership changes, completed analyses) out
// to their subscribers. Dispatch is synchronous and happens inside the
// publishing request, which keeps the no-background-workers model: a
// join is not done until its notification row is written.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

// Register subscribes a handler to every event type it declares.
func (b *Bus) Register(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range handler.Handles() {
		b.subscribers[eventType] = append(b.subscribers[eventType], handler)
		b.logger.Debug("event handler registered", zap.String("event_type", eventType))
	}
}

// Publish delivers an event to its subscribers in registration order.
// A failing handler is logged and skipped; it never blocks the rest of
// the chain or the operation that published.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subscribers := b.subscribers[event.EventType()]
	b.mu.RUnlock()

	if len(subscribers) == 0 {
		return
	}

	b.logger.Info("publishing event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("request_id", requestctx.RequestID(ctx)),
	)

	for _, subscriber := range subscribers {
		if err := subscriber.Handle(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}
