package port

import (
	"context"

	"github.com/nikolayk812/shopcore/internal/domain"
)

// PaymentGateway captures a charge with an external provider and returns the
// provider's payment id. Failures may be transient and eligible for retry.
type PaymentGateway interface {
	Charge(ctx context.Context, customer domain.Customer, amount domain.Money, orderID string) (string, error)
}
