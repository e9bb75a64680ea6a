package port

import "context"

// StockCache holds advisory copies of product inventory; MySQL stays authoritative.
type StockCache interface {
	// GetStock returns the cached inventory, ok is false on a miss
	GetStock(ctx context.Context, productID string) (stock int, ok bool, err error)

	// CacheStock stores inventory unless a value is already cached
	CacheStock(ctx context.Context, productID string, stock int) error

	// InvalidateStock drops cached values after inventory changed
	InvalidateStock(ctx context.Context, productIDs ...string) error
}
