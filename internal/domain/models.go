package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one coffee variant in the catalog. Name doubles as the lookup
// key used by the storefront cart.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string          `json:"description" gorm:"size:500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
	Stock       int             `json:"stock" gorm:"not null"`
	IsActive    bool            `json:"is_active" gorm:"not null"`
}

// Customer holds the contact data submitted with a checkout. A fresh row is
// inserted for every order; repeat buyers are not deduplicated.
type Customer struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:100;not null"`
	Phone    string `json:"phone" gorm:"size:20;not null"`
	Address  string `json:"address" gorm:"size:500;not null"`
	Province string `json:"province" gorm:"size:50;not null"`
	Email    string `json:"email" gorm:"size:100"`
}

// OrderStatus lifecycle: Pending → Processing → Shipped → Delivered, or
// Cancelled. No transition graph is enforced; admins may set any status.
type OrderStatus int

const (
	OrderStatusPending    OrderStatus = 1
	OrderStatusProcessing OrderStatus = 2
	OrderStatusShipped    OrderStatus = 3
	OrderStatusDelivered  OrderStatus = 4
	OrderStatusCancelled  OrderStatus = 5
)

func (s OrderStatus) Valid() bool {
	return s >= OrderStatusPending && s <= OrderStatusCancelled
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// PaymentMethod is a stored label only; no payment is processed.
type PaymentMethod int

const (
	PaymentCash  PaymentMethod = 1
	PaymentSinpe PaymentMethod = 2
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentSinpe
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentCash:
		return "Efectivo"
	case PaymentSinpe:
		return "SINPE Móvil"
	default:
		return "Unknown"
	}
}

// Order header. Subtotal/ShippingCost/Total are computed once at creation
// time and stored; Total == Subtotal + ShippingCost holds at write time.
type Order struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	Reference     uuid.UUID       `json:"reference" gorm:"type:uuid;uniqueIndex;not null"`
	OrderDate     time.Time       `json:"order_date" gorm:"not null"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"not null"`
	Status        OrderStatus     `json:"status" gorm:"not null"`
	Comments      string          `json:"comments,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(18,2);not null"`
	ShippingCost  decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(18,2);not null"`
	CustomerID    int64           `json:"customer_id" gorm:"not null"`
	Customer      Customer        `json:"customer"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem is one order line. UnitPrice is a snapshot taken at order time:
// later catalog price changes must not alter historical lines.
type OrderItem struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	OrderID   int64           `json:"order_id" gorm:"not null"`
	ProductID int64           `json:"product_id" gorm:"not null"`
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,2);not null"`
}

// LineTotal = Quantity × UnitPrice.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart maps a variant name to the requested quantity.
type Cart map[string]int

// HasProducts reports whether at least one quantity is positive.
func (c Cart) HasProducts() bool {
	for _, q := range c {
		if q > 0 {
			return true
		}
	}
	return false
}
