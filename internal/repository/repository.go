package repository

import (
	"context"
	"errors"

	"susurros/internal/domain"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// ProductRepository owns catalog rows. Query shaping only, no business
// rules beyond the conditional stock decrement.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	// List returns all products ordered by name.
	List(ctx context.Context) ([]domain.Product, error)
	// DecrementStock atomically takes qty units if at least qty are
	// available. Returns false when the row is missing or short on stock.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
}

// CustomerRepository inserts checkout contact rows.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
}

// OrderRepository persists order headers with their lines and reads them
// back with customer and product rows eagerly loaded.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// List returns the full order history, newest first.
	List(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus returns false, not an error, when the id is unknown.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (bool, error)
}

// TxManager runs fn inside one transaction scope. For the in-memory store
// this is a global write lock.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
