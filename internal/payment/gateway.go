package payment

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/nikolayk812/shopcore/internal/domain"
)

// TransientError marks a gateway failure eligible for retry. Anything not
// wrapped in it is treated as permanent.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Simulated stands in for an external provider: it fails transiently on
// roughly one call in ten and never leaves the process.
type Simulated struct {
	failureRate float64
}

func NewSimulated() *Simulated {
	return &Simulated{failureRate: 0.1}
}

func (g *Simulated) Charge(_ context.Context, _ domain.Customer, _ domain.Money, _ string) (string, error) {
	if rand.Float64() < g.failureRate {
		return "", Transient(errors.New("payment gateway temporary error"))
	}

	return newPaymentID(), nil
}

// Failing always rejects, for tests.
type Failing struct{}

func (Failing) Charge(_ context.Context, _ domain.Customer, _ domain.Money, _ string) (string, error) {
	return "", Transient(errors.New("always failing"))
}

func newPaymentID() string {
	return "PGPAY-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
