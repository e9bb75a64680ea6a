package port

import (
	"context"

	"github.com/rl1809/electronic-shop/internal/core/domain"
)

type LedgerStore interface {
	// WithTx runs fn in one transaction, committing when fn returns nil and rolling back otherwise
	WithTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// UpdateRating sets the rating of every line of the order holding productID, returns false if none matched
	UpdateRating(ctx context.Context, orderID, productID string, rating float64) (bool, error)

	// GetOrder loads an order with its lines, returns nil if it does not exist
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// LedgerTx is the set of statements the ledger issues inside a transaction.
type LedgerTx interface {
	CustomerExists(ctx context.Context, customerID string) (bool, error)

	// InsertOrder persists the order row only, lines are inserted one by one
	InsertOrder(ctx context.Context, order domain.Order) error

	// LockProduct reads the product holding an exclusive row lock until the transaction ends, nil if missing
	LockProduct(ctx context.Context, productID string) (*domain.Product, error)

	// AdjustInventory adds delta (negative to deduct) to the product's inventory
	AdjustInventory(ctx context.Context, productID string, delta int) error

	InsertOrderLine(ctx context.Context, line domain.OrderLine) error

	// LockOrder reads the order row holding an exclusive row lock, nil if missing
	LockOrder(ctx context.Context, orderID string) (*domain.Order, error)

	ListOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error)

	// DeleteOrder removes the order, its lines go with it
	DeleteOrder(ctx context.Context, orderID string) error

	// DeleteOrderLines removes the lines of the order holding productID, returns rows removed
	DeleteOrderLines(ctx context.Context, orderID, productID string) (int64, error)
}
