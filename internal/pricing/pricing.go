package pricing

import (
	"fmt"
	"time"

	"github.com/nikolayk812/shopcore/internal/domain"
)

// Strategy computes a quoted price for qty units of a product. The quote is
// informational: order totals always sum the raw unit price, and only the
// promotion layer discounts the total.
type Strategy interface {
	PriceFor(product domain.Product, qty int, now time.Time) (domain.Money, error)
}

type Flat struct{}

func (Flat) PriceFor(product domain.Product, qty int, _ time.Time) (domain.Money, error) {
	if qty <= 0 {
		return domain.Money{}, fmt.Errorf("qty[%d]: %w", qty, domain.ErrQtyNotPositive)
	}

	total, err := product.Price.Mul(float64(qty))
	if err != nil {
		return domain.Money{}, fmt.Errorf("price.Mul: %w", err)
	}

	return total, nil
}

// Tiered discounts the scaled total, not each unit, so rounding happens once:
// 1-4 units full price, 5-9 units 5% off, 10 and more 10% off.
type Tiered struct{}

func (Tiered) PriceFor(product domain.Product, qty int, _ time.Time) (domain.Money, error) {
	if qty <= 0 {
		return domain.Money{}, fmt.Errorf("qty[%d]: %w", qty, domain.ErrQtyNotPositive)
	}

	total, err := product.Price.Mul(float64(qty))
	if err != nil {
		return domain.Money{}, fmt.Errorf("price.Mul: %w", err)
	}

	switch {
	case qty >= 10:
		total, err = total.Mul(0.90)
	case qty >= 5:
		total, err = total.Mul(0.95)
	}
	if err != nil {
		return domain.Money{}, fmt.Errorf("total.Mul: %w", err)
	}

	return total, nil
}
