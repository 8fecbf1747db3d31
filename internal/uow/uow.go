package uow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/shopcore/internal/eventbus"
	"github.com/nikolayk812/shopcore/internal/port"
)

// InMemory coordinates the reference repositories and the event bus as one
// unit-of-work boundary. Commit flushes the scope's events to the bus;
// rollback discards them. In-place repository writes applied before a failure
// are not undone: a transactional store must close that gap with its own
// commit discipline.
type InMemory struct {
	orders    port.OrderRepository
	products  port.ProductRepository
	inventory port.InventoryRepository
	customers port.CustomerRepository

	bus    *eventbus.Bus
	logger *slog.Logger
}

func NewInMemory(
	orders port.OrderRepository,
	products port.ProductRepository,
	inventory port.InventoryRepository,
	customers port.CustomerRepository,
	bus *eventbus.Bus,
	logger *slog.Logger,
) (*InMemory, error) {
	if orders == nil || products == nil || inventory == nil || customers == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	if bus == nil {
		return nil, fmt.Errorf("bus is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &InMemory{
		orders:    orders,
		products:  products,
		inventory: inventory,
		customers: customers,
		bus:       bus,
		logger:    logger,
	}, nil
}

func (u *InMemory) Execute(ctx context.Context, fn func(ctx context.Context, scope *port.Scope) error) error {
	scope := port.NewScope(u.orders, u.products, u.inventory, u.customers)

	defer func() {
		if r := recover(); r != nil {
			u.rollback(scope)
			panic(r)
		}
	}()

	if err := fn(ctx, scope); err != nil {
		u.rollback(scope)
		return err
	}

	u.bus.Publish(ctx, scope.Drain()...)
	return nil
}

func (u *InMemory) rollback(scope *port.Scope) {
	dropped := scope.Drain()
	if len(dropped) > 0 {
		u.logger.Warn("rollback: pending events discarded", "count", len(dropped))
	}
}

// Within runs fn in one unit-of-work scope and returns its result, committing
// on success and rolling back on error.
func Within[T any](ctx context.Context, u port.UnitOfWork, fn func(ctx context.Context, scope *port.Scope) (T, error)) (T, error) {
	var result T

	err := u.Execute(ctx, func(ctx context.Context, scope *port.Scope) error {
		var fnErr error
		result, fnErr = fn(ctx, scope)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
