package promotion

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/nikolayk812/shopcore/internal/domain"
)

// maxDiscountRate caps the combined discount at 30% of the order subtotal.
const maxDiscountRate = 0.30

// Spec encodes one discount rule. Specs are evaluated independently and
// composed by Composite.
type Spec interface {
	IsSatisfied(order domain.Order, customer domain.Customer) bool
	Discount(order domain.Order, customer domain.Customer) (domain.Money, error)
}

// MinAmount grants Rate of the subtotal once the subtotal reaches Threshold.
type MinAmount struct {
	Threshold domain.Money
	Rate      float64
}

func (s MinAmount) IsSatisfied(order domain.Order, _ domain.Customer) bool {
	return order.Subtotal.Amount >= s.Threshold.Amount
}

func (s MinAmount) Discount(order domain.Order, customer domain.Customer) (domain.Money, error) {
	if !s.IsSatisfied(order, customer) {
		return domain.Zero(order.Subtotal.Currency), nil
	}

	discount, err := order.Subtotal.Mul(s.Rate)
	if err != nil {
		return domain.Money{}, fmt.Errorf("subtotal.Mul: %w", err)
	}

	return discount, nil
}

// FirstPurchase grants a fixed amount to customers who have not completed
// their first paid order yet.
type FirstPurchase struct {
	Fixed domain.Money
}

func (s FirstPurchase) IsSatisfied(_ domain.Order, customer domain.Customer) bool {
	return !customer.FirstPurchaseDone
}

func (s FirstPurchase) Discount(order domain.Order, customer domain.Customer) (domain.Money, error) {
	if !s.IsSatisfied(order, customer) {
		return domain.Zero(order.Subtotal.Currency), nil
	}

	return s.Fixed, nil
}

// CategoryBundle makes the cheapest line free once the order holds at least
// FreeQty units in total. Ties go to the earliest line.
type CategoryBundle struct {
	Category string
	FreeQty  int
}

func (s CategoryBundle) IsSatisfied(order domain.Order, _ domain.Customer) bool {
	totalQty := lo.SumBy(order.Lines, func(l domain.OrderLine) int { return l.Qty })
	return totalQty >= s.FreeQty
}

func (s CategoryBundle) Discount(order domain.Order, customer domain.Customer) (domain.Money, error) {
	if !s.IsSatisfied(order, customer) || len(order.Lines) == 0 {
		return domain.Zero(order.Subtotal.Currency), nil
	}

	cheapest := lo.MinBy(order.Lines, func(a, b domain.OrderLine) bool {
		return a.UnitPrice.Amount < b.UnitPrice.Amount
	})

	return cheapest.UnitPrice, nil
}

// Composite sums the discounts of all specs and caps the result.
type Composite struct {
	specs []Spec
}

func NewComposite(specs ...Spec) *Composite {
	return &Composite{specs: specs}
}

func (c *Composite) DiscountFor(order domain.Order, customer domain.Customer) (domain.Money, error) {
	total := domain.Zero(order.Subtotal.Currency)

	for _, spec := range c.specs {
		discount, err := spec.Discount(order, customer)
		if err != nil {
			return domain.Money{}, fmt.Errorf("spec.Discount: %w", err)
		}

		total, err = total.Add(discount)
		if err != nil {
			return domain.Money{}, fmt.Errorf("total.Add: %w", err)
		}
	}

	limit, err := order.Subtotal.Mul(maxDiscountRate)
	if err != nil {
		return domain.Money{}, fmt.Errorf("subtotal.Mul: %w", err)
	}

	if total.Amount > limit.Amount {
		return limit, nil
	}

	return total, nil
}
