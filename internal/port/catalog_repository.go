package port

import (
	"context"

	"github.com/rl1809/electronic-shop/internal/core/domain"
)

type CatalogRepository interface {
	// ListVendors returns every vendor with its feedback score
	ListVendors(ctx context.Context) ([]domain.Vendor, error)

	InsertVendor(ctx context.Context, vendor domain.Vendor) error

	InsertCustomer(ctx context.Context, customer domain.Customer) error

	// InsertProduct fails with domain.ErrVendorNotFound when the vendor is unknown
	InsertProduct(ctx context.Context, product domain.Product) error

	// SearchProducts matches keyword against name and tags, most expensive first
	SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error)

	ListProductsByVendor(ctx context.Context, vendorID string) ([]domain.Product, error)

	// GetProduct returns nil if the product does not exist
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}
