package domain

import (
	"fmt"
	"time"
)

type Customer struct {
	ID                string
	Email             string
	JoinedAt          time.Time
	FirstPurchaseDone bool
}

// Product is an immutable catalog entry: updates replace it wholesale.
type Product struct {
	SKU      SKU
	Name     string
	Price    Money
	Category string
}

type InventoryItem struct {
	SKU      SKU
	Quantity int
}

func (i *InventoryItem) Reserve(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve[%d]: %w", qty, ErrQtyNotPositive)
	}

	if i.Quantity < qty {
		return fmt.Errorf("reserve %d of %d: %w", qty, i.Quantity, ErrInsufficientStock)
	}

	i.Quantity -= qty
	return nil
}

func (i *InventoryItem) Restock(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("restock[%d]: %w", qty, ErrQtyNotPositive)
	}

	i.Quantity += qty
	return nil
}
