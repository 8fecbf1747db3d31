package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/port"
)

const (
	defaultMaxAttempts   = 3
	defaultBaseDelay     = 100 * time.Millisecond
	defaultChargeTimeout = 10 * time.Second
)

// Charger wraps a payment gateway with an idempotency cache and a bounded
// exponential-backoff retry. The first charge for a key invokes the gateway
// and caches the payment id; every later charge with the same key returns the
// cached id without touching the gateway. Concurrent first calls for one key
// collapse into a single gateway invocation.
//
// The cache lives for the process lifetime and is independent of any
// unit-of-work scope; the backoff sleep holds no locks.
type Charger struct {
	gateway port.PaymentGateway
	logger  *slog.Logger

	maxAttempts   uint64
	baseDelay     time.Duration
	chargeTimeout time.Duration

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]string // idempotency key -> payment id
}

type Option func(*Charger)

func WithMaxAttempts(n uint64) Option {
	return func(c *Charger) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(c *Charger) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

func WithChargeTimeout(d time.Duration) Option {
	return func(c *Charger) {
		if d > 0 {
			c.chargeTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Charger) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCharger(gateway port.PaymentGateway, opts ...Option) (*Charger, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}

	c := &Charger{
		gateway:       gateway,
		logger:        slog.Default(),
		maxAttempts:   defaultMaxAttempts,
		baseDelay:     defaultBaseDelay,
		chargeTimeout: defaultChargeTimeout,
		cache:         make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// DeriveKey is the default idempotency key for an order when the caller does
// not supply one.
func DeriveKey(orderID string) string {
	return "idem:" + orderID
}

func (c *Charger) Charge(ctx context.Context, customer domain.Customer, amount domain.Money, orderID, idemKey string) (string, error) {
	if idemKey == "" {
		idemKey = DeriveKey(orderID)
	}

	if paymentID, ok := c.Cached(idemKey); ok {
		return paymentID, nil
	}

	// singleflight serializes the check-then-act sequence per key, so two
	// concurrent first calls cannot both reach the gateway.
	result, err, _ := c.group.Do(idemKey, func() (any, error) {
		if paymentID, ok := c.Cached(idemKey); ok {
			return paymentID, nil
		}

		paymentID, err := c.chargeWithRetry(ctx, customer, amount, orderID)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.cache[idemKey] = paymentID
		c.mu.Unlock()

		return paymentID, nil
	})
	if err != nil {
		return "", fmt.Errorf("charge order[%s]: %w", orderID, err)
	}

	return result.(string), nil
}

// Cached reports the payment id already captured for the key, if any.
func (c *Charger) Cached(idemKey string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	paymentID, ok := c.cache[idemKey]
	return paymentID, ok
}

func (c *Charger) chargeWithRetry(ctx context.Context, customer domain.Customer, amount domain.Money, orderID string) (string, error) {
	var paymentID string
	attempt := 0

	operation := func() error {
		attempt++

		chargeCtx, cancel := context.WithTimeout(ctx, c.chargeTimeout)
		defer cancel()

		id, err := c.gateway.Charge(chargeCtx, customer, amount, orderID)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = Transient(err)
			}
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}

			c.logger.Warn("charge attempt failed",
				"order_id", orderID,
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"error", err)
			return err
		}

		paymentID = id
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxAttempts-1), ctx)); err != nil {
		return "", err
	}

	return paymentID, nil
}
