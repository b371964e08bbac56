package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"susurros/internal/domain"
	"susurros/internal/repository"
)

type captureSender struct {
	sent []*domain.Order
	err  error
}

func (c *captureSender) SendOrderConfirmation(o *domain.Order) error {
	c.sent = append(c.sent, o)
	return c.err
}

func setup(t *testing.T) (*OrderService, *StockService, *repository.MemoryStore, *captureSender) {
	t.Helper()
	store := repository.NewMemoryStore()
	customers := repository.NewMemoryCustomers(store)
	orders := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)
	sender := &captureSender{}
	log := slog.Default()
	stockSvc := NewStockService(store, log)
	orderSvc := NewOrderService(store, customers, orders, tx, sender, log)
	return orderSvc, stockSvc, store, sender
}

func validRequest(items domain.Cart) OrderRequest {
	return OrderRequest{
		Items:           items,
		CustomerName:    "Ana Rodríguez",
		CustomerEmail:   "ana@example.com",
		CustomerPhone:   "8888-1234",
		CustomerAddress: "200m norte de la iglesia",
		Province:        "Alajuela",
		PaymentMethod:   domain.PaymentSinpe,
		Comments:        "dejar con el guarda",
	}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, store, sender := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	o, err := orderSvc.CreateOrder(ctx, validRequest(domain.Cart{
		"Tueste Medio Molido 250g": 2,
		"Tueste Medio Molido 500g": 1,
	}))
	require.NoError(t, err)

	assert.NotZero(t, o.ID)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", o.Reference.String())
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, "Ana Rodríguez", o.Customer.Name)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(9500)), "subtotal %s", o.Subtotal)
	assert.True(t, o.ShippingCost.IsZero(), "shipping %s", o.ShippingCost)
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.ShippingCost)))
	require.Len(t, o.Items, 2)

	// stock decremented
	p, err := store.GetByName(ctx, "Tueste Medio Molido 250g")
	require.NoError(t, err)
	assert.Equal(t, DefaultSeedStock-2, p.Stock)

	// notification got the populated order
	require.Len(t, sender.sent, 1)
	assert.Equal(t, o.ID, sender.sent[0].ID)
}

func TestCreateOrder_ShippingChargedOutsideAlajuela(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, _, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	req := validRequest(domain.Cart{
		"Tueste Medio Molido 250g": 2,
		"Tueste Medio Molido 500g": 1,
	})
	req.Province = "San José"

	o, err := orderSvc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.True(t, o.ShippingCost.Equal(decimal.NewFromInt(3200)), "shipping %s", o.ShippingCost)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(12700)), "total %s", o.Total)
}

func TestCreateOrder_EmptyCartWritesNothing(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, store, sender := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	for _, cart := range []domain.Cart{nil, {}, {"Tueste Medio Molido 250g": 0}} {
		_, err := orderSvc.CreateOrder(ctx, validRequest(cart))
		assert.ErrorIs(t, err, ErrEmptyCart)
	}

	orders := repository.NewMemoryOrders(store)
	list, err := orders.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, sender.sent)
}

func TestCreateOrder_InvalidInput(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, _, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	missingName := validRequest(domain.Cart{"Tueste Medio Molido 250g": 1})
	missingName.CustomerName = ""
	_, err := orderSvc.CreateOrder(ctx, missingName)
	assert.ErrorIs(t, err, ErrInvalidInput)

	badPayment := validRequest(domain.Cart{"Tueste Medio Molido 250g": 1})
	badPayment.PaymentMethod = 9
	_, err = orderSvc.CreateOrder(ctx, badPayment)
	assert.ErrorIs(t, err, ErrInvalidInput)

	negative := validRequest(domain.Cart{"Tueste Medio Molido 250g": -1})
	_, err = orderSvc.CreateOrder(ctx, negative)
	assert.ErrorIs(t, err, ErrInvalidInput)

	unknown := validRequest(domain.Cart{"Descafeinado 1kg": 1})
	_, err = orderSvc.CreateOrder(ctx, unknown)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateOrder_StockBoundary(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, store, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	p, err := store.GetByName(ctx, "Tueste Oscuro Molido 250g")
	require.NoError(t, err)
	_, err = stockSvc.SetStock(ctx, p.ID, 3)
	require.NoError(t, err)

	// N+1 fails naming the product and the remaining quantity
	_, err = orderSvc.CreateOrder(ctx, validRequest(domain.Cart{"Tueste Oscuro Molido 250g": 4}))
	var stockErr StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr, 1)
	assert.Equal(t, "Tueste Oscuro Molido 250g", stockErr[0].Product)
	assert.Equal(t, 3, stockErr[0].Remaining)
	assert.Equal(t, 4, stockErr[0].Requested)
	assert.False(t, stockErr[0].OutOfStock)

	// exactly N succeeds
	o, err := orderSvc.CreateOrder(ctx, validRequest(domain.Cart{"Tueste Oscuro Molido 250g": 3}))
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)

	after, err := store.GetByName(ctx, "Tueste Oscuro Molido 250g")
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock)
}

func TestCreateOrder_ReportsAllViolations(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, store, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	p1, err := store.GetByName(ctx, "Tueste Medio Molido 250g")
	require.NoError(t, err)
	_, err = stockSvc.SetStock(ctx, p1.ID, 0)
	require.NoError(t, err)
	p2, err := store.GetByName(ctx, "Tueste Medio Molido 500g")
	require.NoError(t, err)
	_, err = stockSvc.SetStock(ctx, p2.ID, 1)
	require.NoError(t, err)

	_, err = orderSvc.CreateOrder(ctx, validRequest(domain.Cart{
		"Tueste Medio Molido 250g": 1,
		"Tueste Medio Molido 500g": 2,
	}))
	var stockErr StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr, 2)
	assert.True(t, stockErr[0].OutOfStock)
	assert.Equal(t, 1, stockErr[1].Remaining)
}

func TestCreateOrder_ZeroStockIsOutOfStockRegardlessOfQuantity(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, store, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	p, err := store.GetByName(ctx, "Tueste Medio en Grano 500g")
	require.NoError(t, err)
	_, err = stockSvc.SetStock(ctx, p.ID, 0)
	require.NoError(t, err)

	for _, qty := range []int{1, 100} {
		_, err = orderSvc.CreateOrder(ctx, validRequest(domain.Cart{"Tueste Medio en Grano 500g": qty}))
		var stockErr StockError
		require.ErrorAs(t, err, &stockErr)
		require.Len(t, stockErr, 1)
		assert.True(t, stockErr[0].OutOfStock)
	}
}

func TestCreateOrder_PriceSnapshotImmuneToCatalogChange(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, store, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	o, err := orderSvc.CreateOrder(ctx, validRequest(domain.Cart{"Tueste Medio Molido 250g": 1}))
	require.NoError(t, err)

	p, err := store.GetByName(ctx, "Tueste Medio Molido 250g")
	require.NoError(t, err)
	p.Price = decimal.NewFromInt(9999)
	require.NoError(t, store.Update(ctx, p))

	got, err := orderSvc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.NewFromInt(2500)),
		"snapshot changed: %s", got.Items[0].UnitPrice)
}

func TestCreateOrder_NotificationFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, _, sender := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))
	sender.err = errors.New("smtp down")

	o, err := orderSvc.CreateOrder(ctx, validRequest(domain.Cart{"Tueste Medio Molido 250g": 1}))
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Len(t, sender.sent, 1)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	orderSvc, stockSvc, _, _ := setup(t)
	require.NoError(t, stockSvc.InitializeProducts(ctx))

	o, err := orderSvc.CreateOrder(ctx, validRequest(domain.Cart{"Tueste Medio Molido 250g": 1}))
	require.NoError(t, err)

	ok, err := orderSvc.UpdateStatus(ctx, o.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := orderSvc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)

	ok, err = orderSvc.UpdateStatus(ctx, 999, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = orderSvc.UpdateStatus(ctx, o.ID, domain.OrderStatus(42))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
