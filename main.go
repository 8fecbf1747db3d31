package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/currency"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/eventbus"
	"github.com/nikolayk812/shopcore/internal/inventory"
	"github.com/nikolayk812/shopcore/internal/payment"
	"github.com/nikolayk812/shopcore/internal/pricing"
	"github.com/nikolayk812/shopcore/internal/promotion"
	"github.com/nikolayk812/shopcore/internal/repository"
	"github.com/nikolayk812/shopcore/internal/service"
	"github.com/nikolayk812/shopcore/internal/uow"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	krw := currency.MustParseISO("KRW")

	bus := eventbus.New(logger)
	subscribeDefaultHandlers(bus, logger)

	orders := repository.NewOrders()
	products := repository.NewProducts()
	stock := repository.NewInventory()
	customers := repository.NewCustomers()

	unitOfWork, err := uow.NewInMemory(orders, products, stock, customers, bus, logger)
	if err != nil {
		log.Fatal(err)
	}

	customer := domain.Customer{ID: "CUST-001", Email: "user@example.com", JoinedAt: time.Now().UTC()}
	if err := customers.Add(ctx, customer); err != nil {
		log.Fatal(err)
	}

	catalog := []struct {
		product domain.Product
		stock   int
	}{
		{domain.Product{SKU: "SKU-APPLE", Name: "Apples 1kg", Price: domain.Money{Amount: 5500, Currency: krw}, Category: "fruit"}, 50},
		{domain.Product{SKU: "SKU-BEEF", Name: "Beef sirloin 500g", Price: domain.Money{Amount: 28900, Currency: krw}, Category: "meat"}, 10},
		{domain.Product{SKU: "SKU-MILK", Name: "Milk 1L", Price: domain.Money{Amount: 2200, Currency: krw}, Category: "dairy"}, 100},
	}
	for _, entry := range catalog {
		if err := products.Add(ctx, entry.product); err != nil {
			log.Fatal(err)
		}
		if err := stock.Add(ctx, domain.InventoryItem{SKU: entry.product.SKU, Quantity: entry.stock}); err != nil {
			log.Fatal(err)
		}
	}

	gateway, err := payment.NewBreakerGateway(payment.NewSimulated())
	if err != nil {
		log.Fatal(err)
	}

	charger, err := payment.NewCharger(gateway, payment.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	promos := promotion.NewComposite(
		promotion.MinAmount{Threshold: domain.Money{Amount: 30000, Currency: krw}, Rate: 0.05},
		promotion.FirstPurchase{Fixed: domain.Money{Amount: 3000, Currency: krw}},
	)

	svc, err := service.NewOrder(unitOfWork, pricing.Tiered{}, promos, inventory.Strict{}, charger, logger)
	if err != nil {
		log.Fatal(err)
	}

	orderID, err := svc.CreateOrder(ctx, customer.ID)
	if err != nil {
		log.Fatal(err)
	}

	for _, item := range []struct {
		sku string
		qty int
	}{
		{"SKU-APPLE", 6},
		{"SKU-BEEF", 1},
		{"SKU-MILK", 3},
	} {
		if err := svc.AddItem(ctx, orderID, item.sku, item.qty); err != nil {
			log.Fatal(err)
		}
	}

	if err := svc.ApplyPromotions(ctx, orderID); err != nil {
		log.Fatal(err)
	}

	if err := svc.Submit(ctx, orderID); err != nil {
		log.Fatal(err)
	}

	paymentID, err := svc.Checkout(ctx, orderID, "idem-123")
	if err != nil {
		log.Fatal(err)
	}

	// same key, same payment id, no second charge
	replayed, err := svc.Checkout(ctx, orderID, "idem-123")
	if err != nil {
		log.Fatal(err)
	}
	if paymentID != replayed {
		log.Fatalf("idempotency broken: %s vs %s", paymentID, replayed)
	}

	if err := svc.Ship(ctx, orderID, "TRACK-9876543210"); err != nil {
		log.Fatal(err)
	}

	placed, err := svc.ListOrders(ctx, customer.ID)
	if err != nil {
		log.Fatal(err)
	}

	for _, order := range placed {
		logger.Info("order state",
			"order_id", order.ID,
			"status", string(order.Status),
			"subtotal", order.Subtotal.Amount,
			"discount", order.DiscountTotal.Amount,
			"grand_total", order.GrandTotal.Amount)
	}
}

func subscribeDefaultHandlers(bus *eventbus.Bus, logger *slog.Logger) {
	bus.Subscribe(domain.OrderSubmitted{}.EventName(), func(_ context.Context, e domain.Event) error {
		evt := e.(domain.OrderSubmitted)
		logger.Info("audit: order submitted", "order_id", evt.OrderID)
		return nil
	})

	bus.Subscribe(domain.PaymentReceived{}.EventName(), func(_ context.Context, e domain.Event) error {
		evt := e.(domain.PaymentReceived)
		logger.Info("receipt: payment received", "order_id", evt.OrderID, "payment_id", evt.PaymentID)
		return nil
	})

	bus.Subscribe(domain.OrderShipped{}.EventName(), func(_ context.Context, e domain.Event) error {
		evt := e.(domain.OrderShipped)
		logger.Info("notify: order shipped", "order_id", evt.OrderID, "tracking_no", evt.TrackingNo)
		return nil
	})

	bus.Subscribe(domain.OrderCanceled{}.EventName(), func(_ context.Context, e domain.Event) error {
		evt := e.(domain.OrderCanceled)
		logger.Info("notify: order canceled", "order_id", evt.OrderID, "reason", evt.Reason)
		return nil
	})
}
