package inventory

import (
	"context"
	"fmt"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/port"
)

// Policy reserves stock for an order line through the scope's inventory
// repository.
type Policy interface {
	Reserve(ctx context.Context, scope *port.Scope, sku domain.SKU, qty int) error
}

// Strict reserves all requested units or fails without touching stock.
type Strict struct{}

func (Strict) Reserve(ctx context.Context, scope *port.Scope, sku domain.SKU, qty int) error {
	item, err := scope.Inventory.Get(ctx, sku)
	if err != nil {
		return fmt.Errorf("inventory.Get: %w", err)
	}

	if err := item.Reserve(qty); err != nil {
		return fmt.Errorf("item.Reserve: %w", err)
	}

	if err := scope.Inventory.Update(ctx, item); err != nil {
		return fmt.Errorf("inventory.Update: %w", err)
	}

	return nil
}

// Lenient reserves min(available, requested) and accepts the shortfall.
// The shortfall would go to a backorder queue; none is tracked yet.
type Lenient struct{}

func (Lenient) Reserve(ctx context.Context, scope *port.Scope, sku domain.SKU, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("qty[%d]: %w", qty, domain.ErrQtyNotPositive)
	}

	item, err := scope.Inventory.Get(ctx, sku)
	if err != nil {
		return fmt.Errorf("inventory.Get: %w", err)
	}

	toReserve := min(item.Quantity, qty)
	if toReserve == 0 {
		return nil
	}

	if err := item.Reserve(toReserve); err != nil {
		return fmt.Errorf("item.Reserve: %w", err)
	}

	if err := scope.Inventory.Update(ctx, item); err != nil {
		return fmt.Errorf("inventory.Update: %w", err)
	}

	return nil
}
