package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "Pending"
	OrderStatusShipped OrderStatus = "Shipped"
)

// Mutable reports whether ledger operations may still cancel the order or drop its lines.
func (s OrderStatus) Mutable() bool {
	return s == OrderStatusPending
}

type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	CreatedAt  time.Time
	Lines      []OrderLine
}

type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal // snapshot of Product.Price at creation
	Rating    *float64
}

// Total is the sum of quantity * unit price over all lines.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// LineItem is one requested (product, quantity) pair of a new order.
type LineItem struct {
	ProductID string
	Quantity  int
}

// LineID derives the order line identity from the order id and the 1-based position of the item.
func LineID(orderID string, seq int) string {
	return fmt.Sprintf("%s_%d", orderID, seq)
}
