package domain

import "time"

// Event is an immutable fact emitted by an aggregate transition.
type Event interface {
	EventName() string
}

type OrderSubmitted struct {
	OrderID    string
	OccurredAt time.Time
}

func (OrderSubmitted) EventName() string { return "order.submitted" }

func NewOrderSubmitted(orderID string) OrderSubmitted {
	return OrderSubmitted{
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	}
}

type PaymentReceived struct {
	OrderID    string
	PaymentID  string
	OccurredAt time.Time
}

func (PaymentReceived) EventName() string { return "order.payment_received" }

func NewPaymentReceived(orderID, paymentID string) PaymentReceived {
	return PaymentReceived{
		OrderID:    orderID,
		PaymentID:  paymentID,
		OccurredAt: time.Now().UTC(),
	}
}

type OrderShipped struct {
	OrderID    string
	TrackingNo string
	OccurredAt time.Time
}

func (OrderShipped) EventName() string { return "order.shipped" }

func NewOrderShipped(orderID, trackingNo string) OrderShipped {
	return OrderShipped{
		OrderID:    orderID,
		TrackingNo: trackingNo,
		OccurredAt: time.Now().UTC(),
	}
}

type OrderCanceled struct {
	OrderID    string
	Reason     string
	OccurredAt time.Time
}

func (OrderCanceled) EventName() string { return "order.canceled" }

func NewOrderCanceled(orderID, reason string) OrderCanceled {
	return OrderCanceled{
		OrderID:    orderID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
