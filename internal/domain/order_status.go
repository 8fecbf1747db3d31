package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses and orderTransitions maps
const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCanceled  OrderStatus = "canceled"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusDraft:     {},
	OrderStatusSubmitted: {},
	OrderStatusPaid:      {},
	OrderStatusShipped:   {},
	OrderStatusCanceled:  {},
}

// orderTransitions is the one-directional lifecycle: no transition goes back,
// and cancellation is only reachable before payment.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusSubmitted, OrderStatusCanceled},
	OrderStatusSubmitted: {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:      {OrderStatusShipped},
	OrderStatusShipped:   {},
	OrderStatusCanceled:  {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
