package port

import (
	"context"

	"github.com/nikolayk812/shopcore/internal/domain"
)

// Repositories own the canonical stored copy of each aggregate. Implementations
// must be safe for concurrent callers, and reads of mutable aggregates must
// return copies that do not alias internal state.

type OrderRepository interface {
	Get(ctx context.Context, orderID string) (domain.Order, error)
	Add(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error

	Search(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type ProductRepository interface {
	Get(ctx context.Context, sku domain.SKU) (domain.Product, error)
	Add(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
}

type InventoryRepository interface {
	Get(ctx context.Context, sku domain.SKU) (domain.InventoryItem, error)
	Add(ctx context.Context, item domain.InventoryItem) error
	Update(ctx context.Context, item domain.InventoryItem) error
}

type CustomerRepository interface {
	Get(ctx context.Context, customerID string) (domain.Customer, error)
	Add(ctx context.Context, customer domain.Customer) error
	Update(ctx context.Context, customer domain.Customer) error
}
