package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/eventbus"
	"github.com/nikolayk812/shopcore/internal/port"
	"github.com/nikolayk812/shopcore/internal/repository"
	"github.com/nikolayk812/shopcore/internal/uow"
)

func newUnitOfWork(t *testing.T, bus *eventbus.Bus) *uow.InMemory {
	t.Helper()

	u, err := uow.NewInMemory(
		repository.NewOrders(),
		repository.NewProducts(),
		repository.NewInventory(),
		repository.NewCustomers(),
		bus,
		nil,
	)
	require.NoError(t, err)

	return u
}

func countingBus(counter *int) *eventbus.Bus {
	bus := eventbus.New(nil)
	bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, _ domain.Event) error {
		*counter++
		return nil
	})
	return bus
}

func TestInMemory_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("commit flushes recorded events", func(t *testing.T) {
		var published int
		u := newUnitOfWork(t, countingBus(&published))

		err := u.Execute(ctx, func(_ context.Context, scope *port.Scope) error {
			scope.Record(domain.NewOrderSubmitted("ORD-1"), domain.NewOrderSubmitted("ORD-2"))
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, published)
	})

	t.Run("error suppresses event flush and propagates", func(t *testing.T) {
		var published int
		u := newUnitOfWork(t, countingBus(&published))

		wantErr := errors.New("business failure")
		err := u.Execute(ctx, func(_ context.Context, scope *port.Scope) error {
			scope.Record(domain.NewOrderSubmitted("ORD-1"))
			return wantErr
		})

		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, 0, published)
	})

	t.Run("panic suppresses event flush and repanics", func(t *testing.T) {
		var published int
		u := newUnitOfWork(t, countingBus(&published))

		require.Panics(t, func() {
			_ = u.Execute(ctx, func(_ context.Context, scope *port.Scope) error {
				scope.Record(domain.NewOrderSubmitted("ORD-1"))
				panic("boom")
			})
		})
		assert.Equal(t, 0, published)
	})

	t.Run("each scope starts with a fresh accumulator", func(t *testing.T) {
		var published int
		u := newUnitOfWork(t, countingBus(&published))

		err := u.Execute(ctx, func(_ context.Context, scope *port.Scope) error {
			scope.Record(domain.NewOrderSubmitted("ORD-1"))
			return errors.New("first scope fails")
		})
		require.Error(t, err)

		err = u.Execute(ctx, func(_ context.Context, scope *port.Scope) error {
			scope.Record(domain.NewOrderSubmitted("ORD-2"))
			return nil
		})
		require.NoError(t, err)

		// only the committed scope's event reached the bus
		assert.Equal(t, 1, published)
	})
}

func TestWithin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns fn result on commit", func(t *testing.T) {
		u := newUnitOfWork(t, eventbus.New(nil))

		got, err := uow.Within(ctx, u, func(_ context.Context, _ *port.Scope) (string, error) {
			return "result", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "result", got)
	})

	t.Run("returns zero value on rollback", func(t *testing.T) {
		u := newUnitOfWork(t, eventbus.New(nil))

		got, err := uow.Within(ctx, u, func(_ context.Context, _ *port.Scope) (string, error) {
			return "partial", errors.New("failure")
		})

		require.Error(t, err)
		assert.Empty(t, got)
	})
}
