package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"susurros/internal/domain"
	"susurros/internal/notify"
	"susurros/internal/pricing"
	"susurros/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyCart    = errors.New("empty cart")
)

// OrderRequest is one checkout submission.
type OrderRequest struct {
	Items           domain.Cart
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	Province        string
	PaymentMethod   domain.PaymentMethod
	Comments        string
}

// OrderService builds and persists orders: cart validation, stock check,
// pricing, atomic persistence, best-effort notification.
type OrderService struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	tx        repository.TxManager
	notifier  notify.Sender
	log       *slog.Logger
}

func NewOrderService(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	tx repository.TxManager,
	notifier notify.Sender,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		products:  products,
		customers: customers,
		orders:    orders,
		tx:        tx,
		notifier:  notifier,
		log:       log,
	}
}

// CreateOrder runs the checkout pipeline. Customer, order header, line
// items and the stock decrements commit in a single transaction: a failed
// order write leaves no stray customer row, and the conditional decrement
// means two concurrent checkouts cannot both take the last bag.
func (s *OrderService) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	if req.CustomerName == "" || req.CustomerPhone == "" || req.CustomerAddress == "" || req.Province == "" {
		return nil, ErrInvalidInput
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidInput
	}
	for _, qty := range req.Items {
		if qty < 0 {
			return nil, ErrInvalidInput
		}
	}
	if !req.Items.HasProducts() {
		return nil, ErrEmptyCart
	}

	quote, err := pricing.Calculate(req.Items, req.Province)
	if err != nil {
		return nil, ErrInvalidInput
	}

	var orderID int64
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		violations, err := ValidateStock(ctx, s.products, req.Items)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			return violations
		}

		customer := domain.Customer{
			Name:     req.CustomerName,
			Email:    req.CustomerEmail,
			Phone:    req.CustomerPhone,
			Address:  req.CustomerAddress,
			Province: req.Province,
		}
		if err := s.customers.Create(ctx, &customer); err != nil {
			return err
		}

		order := domain.Order{
			Reference:     uuid.New(),
			OrderDate:     time.Now(),
			PaymentMethod: req.PaymentMethod,
			Status:        domain.OrderStatusPending,
			Comments:      req.Comments,
			Subtotal:      quote.Subtotal,
			ShippingCost:  quote.ShippingCost,
			Total:         quote.Total,
			CustomerID:    customer.ID,
		}

		for _, name := range sortedVariants(req.Items) {
			qty := req.Items[name]
			product, err := s.getOrCreateProduct(ctx, name)
			if err != nil {
				return err
			}
			unit, ok := pricing.CanonicalPrice(name)
			if !ok {
				unit = product.Price
			}
			ok, err = s.products.DecrementStock(ctx, product.ID, qty)
			if err != nil {
				return err
			}
			if !ok {
				// lost a race since validation; abort the whole order
				return StockError{{Product: name, Requested: qty, Remaining: product.Stock}}
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: product.ID,
				Quantity:  qty,
				UnitPrice: unit,
			})
		}

		if err := s.orders.Create(ctx, &order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendOrderConfirmation(created); err != nil {
		// never fails the order
		s.log.Error("order confirmation email failed", "order_id", created.ID, "error", err)
	}

	return created, nil
}

// getOrCreateProduct resolves a variant by name, seeding the catalog row on
// first reference. Seeded rows take the naming-convention price and the
// default stock count.
func (s *OrderService) getOrCreateProduct(ctx context.Context, name string) (*domain.Product, error) {
	p, err := s.products.GetByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	p = &domain.Product{
		Name:        name,
		Description: "Café artesanal - " + name,
		Price:       pricing.SeedPrice(name),
		Stock:       DefaultSeedStock,
		IsActive:    true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetOrder returns an order with customer, items and products loaded.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns the full order history, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus sets any status on any order; there is no transition graph.
// Returns false when the order does not exist.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (bool, error) {
	if id <= 0 || !status.Valid() {
		return false, ErrInvalidInput
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

func sortedVariants(cart domain.Cart) []string {
	names := make([]string, 0, len(cart))
	for name, qty := range cart {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
