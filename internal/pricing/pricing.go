// Package pricing computes checkout totals from the canonical price table.
// The table is fixed per variant and deliberately independent of the live
// catalog price; the admin "sync prices" operation reconciles the catalog
// back to this table when they drift.
package pricing

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"susurros/internal/domain"
)

// FreeShippingProvince waives the shipping fee on a byte-exact match.
// "alajuela" or a trailing space does not qualify.
const FreeShippingProvince = "Alajuela"

var (
	// ShippingFee is a flat rate in colones for every other province.
	ShippingFee = decimal.NewFromInt(3200)

	price250g = decimal.NewFromInt(2500)
	price500g = decimal.NewFromInt(4500)
)

var canonical = map[string]decimal.Decimal{
	"Tueste Medio Molido 250g":   price250g,
	"Tueste Medio Molido 500g":   price500g,
	"Tueste Oscuro Molido 250g":  price250g,
	"Tueste Oscuro Molido 500g":  price500g,
	"Tueste Medio en Grano 250g": price250g,
	"Tueste Medio en Grano 500g": price500g,
}

var (
	ErrNegativeQuantity = errors.New("negative quantity")
	ErrUnknownVariant   = errors.New("unknown variant")
)

// Quote is the priced view of a cart.
type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`
}

// Calculate prices a cart for the given destination province. Quantities
// must be non-negative; zero quantities are ignored.
func Calculate(cart domain.Cart, province string) (Quote, error) {
	subtotal := decimal.Zero
	for name, qty := range cart {
		if qty < 0 {
			return Quote{}, ErrNegativeQuantity
		}
		if qty == 0 {
			continue
		}
		unit, ok := canonical[name]
		if !ok {
			return Quote{}, ErrUnknownVariant
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	}

	shipping := ShippingFee
	if province == FreeShippingProvince {
		shipping = decimal.Zero
	}

	return Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Total:        subtotal.Add(shipping),
	}, nil
}

// CanonicalPrice returns the fixed unit price for a variant.
func CanonicalPrice(name string) (decimal.Decimal, bool) {
	p, ok := canonical[name]
	return p, ok
}

// SeedPrice prices a variant by the naming convention used when the catalog
// row is created on demand: 500g bags cost more.
func SeedPrice(name string) decimal.Decimal {
	if strings.Contains(name, "500g") {
		return price500g
	}
	return price250g
}

// Variants lists the canonical variant names in stable order.
func Variants() []string {
	names := make([]string, 0, len(canonical))
	for name := range canonical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
