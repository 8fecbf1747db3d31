package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/inventory"
	"github.com/nikolayk812/shopcore/internal/payment"
	"github.com/nikolayk812/shopcore/internal/port"
	"github.com/nikolayk812/shopcore/internal/pricing"
	"github.com/nikolayk812/shopcore/internal/promotion"
	"github.com/nikolayk812/shopcore/internal/uow"
)

// OrderService orchestrates the order lifecycle. Each public method runs in
// one unit-of-work scope: aggregates are loaded, mutated through their own
// methods, persisted, and the events they emitted are flushed on commit.
type OrderService struct {
	uow       port.UnitOfWork
	pricing   pricing.Strategy
	promos    *promotion.Composite
	inventory inventory.Policy
	charger   *payment.Charger
	logger    *slog.Logger
}

func NewOrder(
	unitOfWork port.UnitOfWork,
	strategy pricing.Strategy,
	promos *promotion.Composite,
	policy inventory.Policy,
	charger *payment.Charger,
	logger *slog.Logger,
) (*OrderService, error) {
	if unitOfWork == nil {
		return nil, fmt.Errorf("unitOfWork is nil")
	}
	if strategy == nil {
		return nil, fmt.Errorf("pricing strategy is nil")
	}
	if promos == nil {
		return nil, fmt.Errorf("promotions are nil")
	}
	if policy == nil {
		return nil, fmt.Errorf("inventory policy is nil")
	}
	if charger == nil {
		return nil, fmt.Errorf("charger is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OrderService{
		uow:       unitOfWork,
		pricing:   strategy,
		promos:    promos,
		inventory: policy,
		charger:   charger,
		logger:    logger,
	}, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, customerID string) (string, error) {
	return uow.Within(ctx, s.uow, func(ctx context.Context, scope *port.Scope) (string, error) {
		if _, err := scope.Customers.Get(ctx, customerID); err != nil {
			return "", fmt.Errorf("customers.Get: %w", err)
		}

		order := domain.NewOrder(newOrderID(), customerID)

		if err := scope.Orders.Add(ctx, *order); err != nil {
			return "", fmt.Errorf("orders.Add: %w", err)
		}

		s.logger.Info("order created", "order_id", order.ID, "customer_id", customerID)
		return order.ID, nil
	})
}

// AddItem reserves stock for the line and appends it to the order. The quoted
// price is informational only: the order resums its own totals from the raw
// unit price.
func (s *OrderService) AddItem(ctx context.Context, orderID, sku string, qty int) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope *port.Scope) error {
		order, err := scope.Orders.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.Get: %w", err)
		}

		parsedSKU, err := domain.ToSKU(sku)
		if err != nil {
			return fmt.Errorf("domain.ToSKU: %w", err)
		}

		product, err := scope.Products.Get(ctx, parsedSKU)
		if err != nil {
			return fmt.Errorf("products.Get: %w", err)
		}

		if err := s.inventory.Reserve(ctx, scope, product.SKU, qty); err != nil {
			return fmt.Errorf("inventory.Reserve: %w", err)
		}

		quoted, err := s.pricing.PriceFor(product, qty, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("pricing.PriceFor: %w", err)
		}

		if err := order.AddLine(product, qty); err != nil {
			return fmt.Errorf("order.AddLine: %w", err)
		}

		if err := scope.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("orders.Update: %w", err)
		}

		s.logger.Info("item added",
			"order_id", orderID,
			"sku", sku,
			"qty", qty,
			"quoted", quoted.Amount,
			"subtotal", order.Subtotal.Amount)
		return nil
	})
}

func (s *OrderService) ApplyPromotions(ctx context.Context, orderID string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope *port.Scope) error {
		order, err := scope.Orders.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.Get: %w", err)
		}

		customer, err := scope.Customers.Get(ctx, order.CustomerID)
		if err != nil {
			return fmt.Errorf("customers.Get: %w", err)
		}

		discount, err := s.promos.DiscountFor(order, customer)
		if err != nil {
			return fmt.Errorf("promos.DiscountFor: %w", err)
		}

		if discount.Amount == 0 {
			return nil
		}

		if err := order.ApplyDiscount(discount); err != nil {
			return fmt.Errorf("order.ApplyDiscount: %w", err)
		}

		if err := scope.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("orders.Update: %w", err)
		}

		s.logger.Info("promotion applied",
			"order_id", orderID,
			"discount", discount.Amount,
			"grand_total", order.GrandTotal.Amount)
		return nil
	})
}

func (s *OrderService) Submit(ctx context.Context, orderID string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope *port.Scope) error {
		order, err := scope.Orders.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.Get: %w", err)
		}

		if err := order.Submit(); err != nil {
			return fmt.Errorf("order.Submit: %w", err)
		}

		// drain before persisting so the stored copy carries no pending events
		scope.Record(order.PopEvents()...)

		if err := scope.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("orders.Update: %w", err)
		}

		s.logger.Info("order submitted", "order_id", orderID)
		return nil
	})
}

// Checkout charges the order's grand total through the idempotent charger and
// marks the order paid. Repeating the call with the same key returns the same
// payment id without reaching the gateway, even after the order is paid.
// The customer's first-purchase flag flips exactly once, on the first paid
// order.
func (s *OrderService) Checkout(ctx context.Context, orderID, idemKey string) (string, error) {
	if idemKey == "" {
		idemKey = payment.DeriveKey(orderID)
	}

	return uow.Within(ctx, s.uow, func(ctx context.Context, scope *port.Scope) (string, error) {
		order, err := scope.Orders.Get(ctx, orderID)
		if err != nil {
			return "", fmt.Errorf("orders.Get: %w", err)
		}

		customer, err := scope.Customers.Get(ctx, order.CustomerID)
		if err != nil {
			return "", fmt.Errorf("customers.Get: %w", err)
		}

		if order.Status == domain.OrderStatusPaid {
			// replay of a completed checkout: surface the captured payment id
			if paymentID, ok := s.charger.Cached(idemKey); ok {
				return paymentID, nil
			}
		}
		if order.Status != domain.OrderStatusSubmitted {
			return "", fmt.Errorf("status[%s]: %w", order.Status, domain.ErrOrderNotSubmitted)
		}

		paymentID, err := s.charger.Charge(ctx, customer, order.GrandTotal, order.ID, idemKey)
		if err != nil {
			return "", fmt.Errorf("charger.Charge: %w", err)
		}

		if err := order.MarkPaid(paymentID); err != nil {
			return "", fmt.Errorf("order.MarkPaid: %w", err)
		}

		scope.Record(order.PopEvents()...)

		if err := scope.Orders.Update(ctx, order); err != nil {
			return "", fmt.Errorf("orders.Update: %w", err)
		}

		if !customer.FirstPurchaseDone {
			customer.FirstPurchaseDone = true
			if err := scope.Customers.Update(ctx, customer); err != nil {
				return "", fmt.Errorf("customers.Update: %w", err)
			}
		}

		s.logger.Info("payment captured",
			"order_id", orderID,
			"payment_id", paymentID,
			"grand_total", order.GrandTotal.Amount)
		return paymentID, nil
	})
}

func (s *OrderService) Ship(ctx context.Context, orderID, trackingNo string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope *port.Scope) error {
		order, err := scope.Orders.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.Get: %w", err)
		}

		if err := order.Ship(trackingNo); err != nil {
			return fmt.Errorf("order.Ship: %w", err)
		}

		scope.Record(order.PopEvents()...)

		if err := scope.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("orders.Update: %w", err)
		}

		s.logger.Info("order shipped", "order_id", orderID, "tracking_no", trackingNo)
		return nil
	})
}

// Cancel voids a draft or submitted order and returns its reserved stock.
func (s *OrderService) Cancel(ctx context.Context, orderID, reason string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope *port.Scope) error {
		order, err := scope.Orders.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.Get: %w", err)
		}

		if err := order.Cancel(reason); err != nil {
			return fmt.Errorf("order.Cancel: %w", err)
		}

		for _, line := range order.Lines {
			item, err := scope.Inventory.Get(ctx, line.SKU)
			if err != nil {
				return fmt.Errorf("inventory.Get: %w", err)
			}

			if err := item.Restock(line.Qty); err != nil {
				return fmt.Errorf("item.Restock: %w", err)
			}

			if err := scope.Inventory.Update(ctx, item); err != nil {
				return fmt.Errorf("inventory.Update: %w", err)
			}
		}

		scope.Record(order.PopEvents()...)

		if err := scope.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("orders.Update: %w", err)
		}

		s.logger.Info("order canceled", "order_id", orderID, "reason", reason)
		return nil
	})
}

func (s *OrderService) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	return uow.Within(ctx, s.uow, func(ctx context.Context, scope *port.Scope) ([]domain.Order, error) {
		orders, err := scope.Orders.Search(ctx, domain.OrderFilter{CustomerIDs: []string{customerID}})
		if err != nil {
			return nil, fmt.Errorf("orders.Search: %w", err)
		}

		return orders, nil
	})
}

func newOrderID() string {
	return "ORD-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
