package service

import (
	"context"
	"errors"
	"log/slog"

	"susurros/internal/domain"
	"susurros/internal/pricing"
	"susurros/internal/repository"
)

// DefaultSeedStock is the stock count given to newly seeded catalog rows.
const DefaultSeedStock = 50

// StockService covers the admin-facing catalog operations.
type StockService struct {
	products repository.ProductRepository
	log      *slog.Logger
}

func NewStockService(products repository.ProductRepository, log *slog.Logger) *StockService {
	return &StockService{products: products, log: log}
}

// ListProducts returns the whole catalog ordered by name.
func (s *StockService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// SetAvailability toggles the active flag. Returns false when the id is
// unknown; callers must check.
func (s *StockService) SetAvailability(ctx context.Context, id int64, active bool) (bool, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.IsActive = active
	if err := s.products.Update(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// SetStock sets the absolute stock quantity. Setting zero also forces the
// product inactive. Returns false when the id is unknown.
func (s *StockService) SetStock(ctx context.Context, id int64, quantity int) (bool, error) {
	if quantity < 0 {
		return false, ErrInvalidInput
	}
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.Stock = quantity
	if quantity == 0 {
		p.IsActive = false
	}
	if err := s.products.Update(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// InitializeProducts seeds any standard variant missing from the catalog.
// Idempotent: existing rows are left untouched.
func (s *StockService) InitializeProducts(ctx context.Context) error {
	for _, name := range pricing.Variants() {
		_, err := s.products.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		p := domain.Product{
			Name:        name,
			Description: "Café artesanal - " + name,
			Price:       pricing.SeedPrice(name),
			Stock:       DefaultSeedStock,
			IsActive:    true,
		}
		if err := s.products.Create(ctx, &p); err != nil {
			return err
		}
		s.log.Info("seeded catalog product", "name", name, "price", p.Price)
	}
	return nil
}

// SyncPrices walks the canonical price table and corrects drifted catalog
// rows. Returns whether anything was written; a second call right after a
// sync is a no-op.
func (s *StockService) SyncPrices(ctx context.Context) (bool, error) {
	updated := false
	for _, name := range pricing.Variants() {
		want, _ := pricing.CanonicalPrice(name)
		p, err := s.products.GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, err
		}
		if p.Price.Equal(want) {
			continue
		}
		s.log.Info("syncing product price", "name", name, "from", p.Price, "to", want)
		p.Price = want
		if err := s.products.Update(ctx, p); err != nil {
			return updated, err
		}
		updated = true
	}
	return updated, nil
}
