package eventbus

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nikolayk812/shopcore/internal/domain"
)

type Handler func(ctx context.Context, event domain.Event) error

// Bus dispatches events synchronously to handlers registered per event name,
// in subscription order. A handler failure or panic is logged and does not
// affect the remaining handlers or events.
type Bus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(eventName string, handler Handler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *Bus) Publish(ctx context.Context, events ...domain.Event) {
	for _, event := range events {
		b.mu.RLock()
		handlers := slices.Clone(b.handlers[event.EventName()])
		b.mu.RUnlock()

		for _, handler := range handlers {
			b.dispatch(ctx, event, handler)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, event domain.Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic", "event", event.EventName(), "panic", r)
		}
	}()

	if err := handler(ctx, event); err != nil {
		b.logger.Error("event handler error", "event", event.EventName(), "error", err)
	}
}
