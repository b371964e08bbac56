package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"susurros/internal/domain"
	"susurros/internal/repository"
)

// StockViolation describes why a requested quantity cannot be fulfilled.
type StockViolation struct {
	Product    string `json:"product"`
	Requested  int    `json:"requested"`
	Remaining  int    `json:"remaining"`
	OutOfStock bool   `json:"out_of_stock"`
}

func (v StockViolation) Message() string {
	if v.OutOfStock {
		return fmt.Sprintf("%s: agotado", v.Product)
	}
	return fmt.Sprintf("%s: solo quedan %d (solicitados %d)", v.Product, v.Remaining, v.Requested)
}

// StockError carries every violation found so the storefront can show all
// problems at once instead of the first one.
type StockError []StockViolation

func (e StockError) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message()
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

// ValidateStock checks every requested quantity against the catalog. A
// missing, inactive or zero-stock product is out of stock regardless of the
// requested amount; a short row reports the remaining quantity. Zero
// quantities are skipped. Returns all violations, in variant name order.
func ValidateStock(ctx context.Context, products repository.ProductRepository, cart domain.Cart) (StockError, error) {
	names := make([]string, 0, len(cart))
	for name, qty := range cart {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var violations StockError
	for _, name := range names {
		qty := cart[name]
		p, err := products.GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			violations = append(violations, StockViolation{Product: name, Requested: qty, OutOfStock: true})
			continue
		}
		if err != nil {
			return nil, err
		}
		switch {
		case !p.IsActive || p.Stock == 0:
			violations = append(violations, StockViolation{Product: name, Requested: qty, OutOfStock: true})
		case p.Stock < qty:
			violations = append(violations, StockViolation{Product: name, Requested: qty, Remaining: p.Stock})
		}
	}
	return violations, nil
}
