package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/port"
)

// BreakerGateway stops hammering a failing provider: after consecutive
// failures the circuit opens and calls are rejected until the cool-down runs
// out. An open circuit surfaces as a transient error, so the charger's retry
// policy applies.
type BreakerGateway struct {
	inner port.PaymentGateway
	cb    *gobreaker.CircuitBreaker[string]
}

func NewBreakerGateway(inner port.PaymentGateway) (*BreakerGateway, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner gateway is nil")
	}

	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &BreakerGateway{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[string](settings),
	}, nil
}

func (g *BreakerGateway) Charge(ctx context.Context, customer domain.Customer, amount domain.Money, orderID string) (string, error) {
	paymentID, err := g.cb.Execute(func() (string, error) {
		return g.inner.Charge(ctx, customer, amount, orderID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", Transient(err)
		}
		return "", err
	}

	return paymentID, nil
}
