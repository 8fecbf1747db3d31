package port

import (
	"context"

	"github.com/nikolayk812/shopcore/internal/domain"
)

// Scope is one unit-of-work boundary: repository handles plus an accumulator
// for the domain events recorded during the scope. Events are flushed on
// commit and discarded on rollback.
type Scope struct {
	Orders    OrderRepository
	Products  ProductRepository
	Inventory InventoryRepository
	Customers CustomerRepository

	events []domain.Event
}

func NewScope(orders OrderRepository, products ProductRepository, inventory InventoryRepository, customers CustomerRepository) *Scope {
	return &Scope{
		Orders:    orders,
		Products:  products,
		Inventory: inventory,
		Customers: customers,
	}
}

func (s *Scope) Record(events ...domain.Event) {
	s.events = append(s.events, events...)
}

// Drain returns the accumulated events and clears the accumulator.
func (s *Scope) Drain() []domain.Event {
	events := s.events
	s.events = nil
	return events
}

// UnitOfWork runs fn within a fresh scope: on a nil return the scope commits,
// on an error or panic it rolls back and the failure propagates to the caller.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, scope *Scope) error) error
}
