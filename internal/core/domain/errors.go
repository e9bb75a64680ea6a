package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionUnavailable = errors.New("connection unavailable")
	ErrRetryable             = errors.New("transaction aborted by lock contention, retry")
	ErrDuplicateIdentity     = errors.New("duplicate identity")

	ErrCustomerNotFound    = errors.New("customer not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order is not pending")
	ErrLineNotFound        = errors.New("order line not found")

	ErrMissingID       = errors.New("identifier is required")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")
	ErrEmptyOrder      = errors.New("order has no line items")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrInvalidProduct  = errors.New("invalid product")
)

// StockError reports the product that could not cover a requested quantity.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: product %s requested %d, available %d",
		ErrInsufficientStock, e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
