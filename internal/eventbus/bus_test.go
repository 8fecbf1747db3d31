package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/eventbus"
)

func TestBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("handlers run in subscription order", func(t *testing.T) {
		bus := eventbus.New(nil)

		var calls []string
		for _, name := range []string{"first", "second", "third"} {
			bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
				calls = append(calls, name)
				return nil
			})
		}

		bus.Publish(ctx, domain.NewOrderSubmitted("ORD-1"))

		assert.Equal(t, []string{"first", "second", "third"}, calls)
	})

	t.Run("handlers only see their event variant", func(t *testing.T) {
		bus := eventbus.New(nil)

		var submitted, shipped int
		bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
			submitted++
			return nil
		})
		bus.Subscribe(domain.OrderShipped{}.EventName(), func(_ context.Context, _ domain.Event) error {
			shipped++
			return nil
		})

		bus.Publish(ctx,
			domain.NewOrderSubmitted("ORD-1"),
			domain.NewOrderShipped("ORD-1", "T1"),
			domain.NewOrderSubmitted("ORD-2"),
		)

		assert.Equal(t, 2, submitted)
		assert.Equal(t, 1, shipped)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		bus := eventbus.New(nil)

		var delivered int
		bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
			return errors.New("handler failure")
		})
		bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
			delivered++
			return nil
		})

		bus.Publish(ctx, domain.NewOrderSubmitted("ORD-1"), domain.NewOrderSubmitted("ORD-2"))

		assert.Equal(t, 2, delivered)
	})

	t.Run("panicking handler is isolated", func(t *testing.T) {
		bus := eventbus.New(nil)

		var delivered int
		bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
			panic("handler panic")
		})
		bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
			delivered++
			return nil
		})

		require.NotPanics(t, func() {
			bus.Publish(ctx, domain.NewOrderSubmitted("ORD-1"))
		})
		assert.Equal(t, 1, delivered)
	})

	t.Run("no handlers: no-op", func(t *testing.T) {
		bus := eventbus.New(nil)

		require.NotPanics(t, func() {
			bus.Publish(ctx, domain.NewOrderCanceled("ORD-1", "reason"))
		})
	})
}
