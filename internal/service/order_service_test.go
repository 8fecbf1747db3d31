package service_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/eventbus"
	"github.com/nikolayk812/shopcore/internal/inventory"
	"github.com/nikolayk812/shopcore/internal/payment"
	"github.com/nikolayk812/shopcore/internal/port"
	"github.com/nikolayk812/shopcore/internal/pricing"
	"github.com/nikolayk812/shopcore/internal/promotion"
	"github.com/nikolayk812/shopcore/internal/repository"
	"github.com/nikolayk812/shopcore/internal/service"
	"github.com/nikolayk812/shopcore/internal/uow"
)

var krw = currency.MustParseISO("KRW")

// countingGateway always succeeds and counts invocations.
type countingGateway struct {
	calls atomic.Int64
}

func (g *countingGateway) Charge(_ context.Context, _ domain.Customer, _ domain.Money, _ string) (string, error) {
	return fmt.Sprintf("PAY-%d", g.calls.Add(1)), nil
}

type orderServiceSuite struct {
	suite.Suite

	svc       *service.OrderService
	gateway   *countingGateway
	orders    port.OrderRepository
	inventory port.InventoryRepository
	customers port.CustomerRepository
	published map[string]int
}

// entry point to run the tests in the suite
func TestOrderServiceSuite(t *testing.T) {
	// Verifies no leaks after all tests in the suite run.
	defer goleak.VerifyNone(t)

	suite.Run(t, new(orderServiceSuite))
}

// before each test in the suite
func (suite *orderServiceSuite) SetupTest() {
	ctx := suite.T().Context()

	suite.published = make(map[string]int)
	bus := eventbus.New(nil)
	for _, name := range []string{
		domain.OrderSubmitted{}.EventName(),
		domain.PaymentReceived{}.EventName(),
		domain.OrderShipped{}.EventName(),
		domain.OrderCanceled{}.EventName(),
	} {
		bus.Subscribe(name, func(_ context.Context, e domain.Event) error {
			suite.published[e.EventName()]++
			return nil
		})
	}

	suite.orders = repository.NewOrders()
	products := repository.NewProducts()
	suite.inventory = repository.NewInventory()
	suite.customers = repository.NewCustomers()

	unitOfWork, err := uow.NewInMemory(suite.orders, products, suite.inventory, suite.customers, bus, nil)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.customers.Add(ctx, domain.Customer{
		ID:       "CUST-001",
		Email:    "user@example.com",
		JoinedAt: time.Now().UTC(),
	}))

	catalog := []struct {
		product domain.Product
		stock   int
	}{
		{domain.Product{SKU: "SKU-APPLE", Name: "Apples 1kg", Price: money(5500), Category: "fruit"}, 50},
		{domain.Product{SKU: "SKU-BEEF", Name: "Beef sirloin 500g", Price: money(28900), Category: "meat"}, 10},
		{domain.Product{SKU: "SKU-MILK", Name: "Milk 1L", Price: money(2200), Category: "dairy"}, 100},
	}
	for _, entry := range catalog {
		suite.Require().NoError(products.Add(ctx, entry.product))
		suite.Require().NoError(suite.inventory.Add(ctx, domain.InventoryItem{SKU: entry.product.SKU, Quantity: entry.stock}))
	}

	suite.gateway = &countingGateway{}
	charger, err := payment.NewCharger(suite.gateway,
		payment.WithMaxAttempts(3),
		payment.WithBaseDelay(time.Millisecond),
	)
	suite.Require().NoError(err)

	promos := promotion.NewComposite(
		promotion.MinAmount{Threshold: money(30000), Rate: 0.05},
		promotion.FirstPurchase{Fixed: money(3000)},
	)

	suite.svc, err = service.NewOrder(unitOfWork, pricing.Tiered{}, promos, inventory.Strict{}, charger, nil)
	suite.Require().NoError(err)
}

func money(amount int64) domain.Money {
	return domain.Money{Amount: amount, Currency: krw}
}

func (suite *orderServiceSuite) placeOrder(ctx context.Context) string {
	suite.T().Helper()

	orderID, err := suite.svc.CreateOrder(ctx, "CUST-001")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.svc.AddItem(ctx, orderID, "SKU-APPLE", 6))
	suite.Require().NoError(suite.svc.AddItem(ctx, orderID, "SKU-BEEF", 1))
	suite.Require().NoError(suite.svc.AddItem(ctx, orderID, "SKU-MILK", 3))

	return orderID
}

func (suite *orderServiceSuite) TestFullLifecycle() {
	t := suite.T()
	ctx := t.Context()

	orderID := suite.placeOrder(ctx)

	order, err := suite.orders.Get(ctx, orderID)
	require.NoError(t, err)
	// totals sum the raw unit price; the tiered quote (6x5500x0.95=31350)
	// never reaches the aggregate
	assert.Equal(t, int64(68500), order.Subtotal.Amount)

	require.NoError(t, suite.svc.ApplyPromotions(ctx, orderID))

	order, err = suite.orders.Get(ctx, orderID)
	require.NoError(t, err)
	// round(68500*0.05) + 3000 = 6425, below the 30% cap of 20550
	assert.Equal(t, int64(6425), order.DiscountTotal.Amount)
	assert.Equal(t, int64(62075), order.GrandTotal.Amount)

	require.NoError(t, suite.svc.Submit(ctx, orderID))
	assert.Equal(t, 1, suite.published[domain.OrderSubmitted{}.EventName()])

	paymentID, err := suite.svc.Checkout(ctx, orderID, "idem-123")
	require.NoError(t, err)
	assert.NotEmpty(t, paymentID)

	// same key: same payment id, no second charge
	replayed, err := suite.svc.Checkout(ctx, orderID, "idem-123")
	require.NoError(t, err)
	assert.Equal(t, paymentID, replayed)
	assert.Equal(t, int64(1), suite.gateway.calls.Load())
	assert.Equal(t, 1, suite.published[domain.PaymentReceived{}.EventName()])

	require.NoError(t, suite.svc.Ship(ctx, orderID, "T1"))

	order, err = suite.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, 1, suite.published[domain.OrderShipped{}.EventName()])

	// inventory was reserved per line
	item, err := suite.inventory.Get(ctx, "SKU-APPLE")
	require.NoError(t, err)
	assert.Equal(t, 44, item.Quantity)

	// first purchase flag flipped exactly once
	customer, err := suite.customers.Get(ctx, "CUST-001")
	require.NoError(t, err)
	assert.True(t, customer.FirstPurchaseDone)

	// each transition's event was published once over the whole lifecycle;
	// stored copies must not resurrect drained events on later transitions
	assert.Equal(t, map[string]int{
		domain.OrderSubmitted{}.EventName():  1,
		domain.PaymentReceived{}.EventName(): 1,
		domain.OrderShipped{}.EventName():    1,
	}, suite.published)
}

func (suite *orderServiceSuite) TestCreateOrder() {
	t := suite.T()
	ctx := t.Context()

	t.Run("unknown customer: not found", func(t *testing.T) {
		_, err := suite.svc.CreateOrder(ctx, "CUST-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("fresh unique ids", func(t *testing.T) {
		first, err := suite.svc.CreateOrder(ctx, "CUST-001")
		require.NoError(t, err)

		second, err := suite.svc.CreateOrder(ctx, "CUST-001")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)

		order, err := suite.orders.Get(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusDraft, order.Status)
	})
}

func (suite *orderServiceSuite) TestAddItem() {
	t := suite.T()
	ctx := t.Context()

	orderID, err := suite.svc.CreateOrder(ctx, "CUST-001")
	require.NoError(t, err)

	t.Run("unknown order: not found", func(t *testing.T) {
		err := suite.svc.AddItem(ctx, "ORD-missing", "SKU-APPLE", 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown product: not found", func(t *testing.T) {
		err := suite.svc.AddItem(ctx, orderID, "SKU-MISSING", 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("insufficient stock under strict policy: error", func(t *testing.T) {
		err := suite.svc.AddItem(ctx, orderID, "SKU-BEEF", 11)
		require.ErrorIs(t, err, domain.ErrInsufficientStock)

		// stock untouched, no line added
		item, err := suite.inventory.Get(ctx, "SKU-BEEF")
		require.NoError(t, err)
		assert.Equal(t, 10, item.Quantity)

		order, err := suite.orders.Get(ctx, orderID)
		require.NoError(t, err)
		assert.Empty(t, order.Lines)
	})
}

func (suite *orderServiceSuite) TestCheckout() {
	t := suite.T()
	ctx := t.Context()

	t.Run("before submit: error", func(t *testing.T) {
		orderID := suite.placeOrder(ctx)

		_, err := suite.svc.Checkout(ctx, orderID, "idem-1")
		require.ErrorIs(t, err, domain.ErrOrderNotSubmitted)
		assert.Equal(t, int64(0), suite.gateway.calls.Load())
	})

	t.Run("default key derived from order id", func(t *testing.T) {
		orderID := suite.placeOrder(ctx)
		require.NoError(t, suite.svc.Submit(ctx, orderID))

		first, err := suite.svc.Checkout(ctx, orderID, "")
		require.NoError(t, err)

		second, err := suite.svc.Checkout(ctx, orderID, "")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func (suite *orderServiceSuite) TestCheckoutFailureKeepsOrderSubmitted() {
	t := suite.T()
	ctx := t.Context()

	// rebuild the service with an always-failing gateway
	charger, err := payment.NewCharger(payment.Failing{},
		payment.WithMaxAttempts(2),
		payment.WithBaseDelay(time.Millisecond),
	)
	require.NoError(t, err)

	bus := eventbus.New(nil)
	unitOfWork, err := uow.NewInMemory(suite.orders, repository.NewProducts(), suite.inventory, suite.customers, bus, nil)
	require.NoError(t, err)

	orderID := suite.placeOrder(ctx)
	require.NoError(t, suite.svc.Submit(ctx, orderID))

	promos := promotion.NewComposite()
	failing, err := service.NewOrder(unitOfWork, pricing.Flat{}, promos, inventory.Strict{}, charger, nil)
	require.NoError(t, err)

	_, err = failing.Checkout(ctx, orderID, "idem-fail")
	require.Error(t, err)

	order, err := suite.orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSubmitted, order.Status)
	assert.Equal(t, 0, suite.published[domain.PaymentReceived{}.EventName()])
}

func (suite *orderServiceSuite) TestCancel() {
	t := suite.T()
	ctx := t.Context()

	t.Run("cancel restocks reserved inventory", func(t *testing.T) {
		orderID := suite.placeOrder(ctx)

		item, err := suite.inventory.Get(ctx, "SKU-APPLE")
		require.NoError(t, err)
		require.Equal(t, 44, item.Quantity)

		require.NoError(t, suite.svc.Cancel(ctx, orderID, "changed my mind"))

		item, err = suite.inventory.Get(ctx, "SKU-APPLE")
		require.NoError(t, err)
		assert.Equal(t, 50, item.Quantity)

		order, err := suite.orders.Get(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCanceled, order.Status)
		assert.Equal(t, 1, suite.published[domain.OrderCanceled{}.EventName()])
	})

	t.Run("cancel after payment: error", func(t *testing.T) {
		orderID := suite.placeOrder(ctx)
		require.NoError(t, suite.svc.Submit(ctx, orderID))

		_, err := suite.svc.Checkout(ctx, orderID, "idem-cancel")
		require.NoError(t, err)

		require.ErrorIs(t, suite.svc.Cancel(ctx, orderID, "too late"), domain.ErrOrderNotCancelable)
	})
}

func (suite *orderServiceSuite) TestShip() {
	t := suite.T()
	ctx := t.Context()

	t.Run("before payment: error", func(t *testing.T) {
		orderID := suite.placeOrder(ctx)
		require.NoError(t, suite.svc.Submit(ctx, orderID))

		require.ErrorIs(t, suite.svc.Ship(ctx, orderID, "T1"), domain.ErrOrderNotPaid)
	})
}

func (suite *orderServiceSuite) TestListOrders() {
	t := suite.T()
	ctx := t.Context()

	first := suite.placeOrder(ctx)
	second := suite.placeOrder(ctx)

	orders, err := suite.svc.ListOrders(ctx, "CUST-001")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	ids := []string{orders[0].ID, orders[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func (suite *orderServiceSuite) TestLenientPolicy() {
	t := suite.T()
	ctx := t.Context()

	// same world, lenient reservations
	scope := port.NewScope(suite.orders, nil, suite.inventory, suite.customers)

	require.NoError(t, inventory.Lenient{}.Reserve(ctx, scope, "SKU-BEEF", 25))

	item, err := suite.inventory.Get(ctx, "SKU-BEEF")
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
}
