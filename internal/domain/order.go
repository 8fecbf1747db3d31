package domain

import (
	"fmt"
	"time"
)

type OrderLine struct {
	SKU       SKU
	Name      string
	UnitPrice Money
	Qty       int
}

func (l OrderLine) Total() Money {
	return Money{Amount: l.UnitPrice.Amount * int64(l.Qty), Currency: l.UnitPrice.Currency}
}

// Order is the central aggregate: it owns its lines and its pending event queue,
// and every mutation goes through a method that preserves the totals invariant
// `GrandTotal = Subtotal - DiscountTotal` with `DiscountTotal <= Subtotal`.
type Order struct {
	ID            string
	CustomerID    string
	Lines         []OrderLine
	Status        OrderStatus
	Subtotal      Money
	DiscountTotal Money
	GrandTotal    Money
	CreatedAt     time.Time

	pendingEvents []Event
}

func NewOrder(id, customerID string) *Order {
	return &Order{
		ID:         id,
		CustomerID: customerID,
		Status:     OrderStatusDraft,
		CreatedAt:  time.Now().UTC(),
	}
}

// AddLine appends a line for qty units of the product and resums the totals.
// Lines may only be added while the order is in draft.
func (o *Order) AddLine(product Product, qty int) error {
	if o.Status != OrderStatusDraft {
		return fmt.Errorf("status[%s]: %w", o.Status, ErrOrderNotDraft)
	}
	if qty <= 0 {
		return fmt.Errorf("qty[%d]: %w", qty, ErrQtyNotPositive)
	}
	if len(o.Lines) > 0 && product.Price.Currency != o.Lines[0].UnitPrice.Currency {
		return fmt.Errorf("line currency[%s]: %w", product.Price.Currency, ErrCurrencyMismatch)
	}

	o.Lines = append(o.Lines, OrderLine{
		SKU:       product.SKU,
		Name:      product.Name,
		UnitPrice: product.Price,
		Qty:       qty,
	})

	return o.recalcTotals()
}

// ApplyDiscount adds to the cumulative discount. The cumulative discount may
// never exceed the subtotal.
func (o *Order) ApplyDiscount(discount Money) error {
	newDiscount, err := o.DiscountTotal.Add(discount)
	if err != nil {
		return fmt.Errorf("discountTotal.Add: %w", err)
	}

	if newDiscount.Amount > o.Subtotal.Amount {
		return fmt.Errorf("discount[%d] vs subtotal[%d]: %w", newDiscount.Amount, o.Subtotal.Amount, ErrDiscountExceedsSubtotal)
	}

	o.DiscountTotal = newDiscount
	return o.recalcTotals()
}

func (o *Order) Submit() error {
	if len(o.Lines) == 0 {
		return fmt.Errorf("order[%s]: %w", o.ID, ErrOrderEmpty)
	}
	if !o.Status.CanTransitionTo(OrderStatusSubmitted) {
		return fmt.Errorf("status[%s]: %w", o.Status, ErrOrderNotDraft)
	}

	o.Status = OrderStatusSubmitted
	o.record(NewOrderSubmitted(o.ID))
	return nil
}

func (o *Order) MarkPaid(paymentID string) error {
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return fmt.Errorf("status[%s]: %w", o.Status, ErrOrderNotSubmitted)
	}

	o.Status = OrderStatusPaid
	o.record(NewPaymentReceived(o.ID, paymentID))
	return nil
}

func (o *Order) Ship(trackingNo string) error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return fmt.Errorf("status[%s]: %w", o.Status, ErrOrderNotPaid)
	}

	o.Status = OrderStatusShipped
	o.record(NewOrderShipped(o.ID, trackingNo))
	return nil
}

func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCanceled) {
		return fmt.Errorf("status[%s]: %w", o.Status, ErrOrderNotCancelable)
	}

	o.Status = OrderStatusCanceled
	o.record(NewOrderCanceled(o.ID, reason))
	return nil
}

// PopEvents drains the pending event queue, so each event is flushed once.
func (o *Order) PopEvents() []Event {
	events := o.pendingEvents
	o.pendingEvents = nil
	return events
}

func (o *Order) Clone() Order {
	clone := *o
	clone.Lines = append([]OrderLine(nil), o.Lines...)
	clone.pendingEvents = append([]Event(nil), o.pendingEvents...)
	return clone
}

func (o *Order) record(e Event) {
	o.pendingEvents = append(o.pendingEvents, e)
}

// recalcTotals resums from scratch rather than adjusting incrementally, so the
// totals cannot drift.
func (o *Order) recalcTotals() error {
	subtotal := Money{}
	if len(o.Lines) > 0 {
		subtotal = Zero(o.Lines[0].UnitPrice.Currency)
	}

	for _, line := range o.Lines {
		var err error
		subtotal, err = subtotal.Add(line.Total())
		if err != nil {
			return fmt.Errorf("subtotal.Add: %w", err)
		}
	}

	grandTotal, err := subtotal.Sub(o.DiscountTotal)
	if err != nil {
		return fmt.Errorf("subtotal.Sub: %w", err)
	}

	o.Subtotal = subtotal
	o.GrandTotal = grandTotal
	return nil
}
