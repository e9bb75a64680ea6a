package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/port"
)

// CatalogService manages the vendor, customer and product directory the ledger reads from.
type CatalogService struct {
	repo  port.CatalogRepository
	cache port.StockCache
	log   *zap.Logger
}

func NewCatalogService(repo port.CatalogRepository, cache port.StockCache, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, log: log}
}

func (s *CatalogService) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	vendors, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

func (s *CatalogService) AddVendor(ctx context.Context, v domain.Vendor) error {
	if v.ID == "" {
		return fmt.Errorf("%w: vendor id", domain.ErrMissingID)
	}
	if err := s.repo.InsertVendor(ctx, v); err != nil {
		return fmt.Errorf("add vendor %s: %w", v.ID, err)
	}
	s.log.Info("vendor added", zap.String("vendor_id", v.ID), zap.String("name", v.Name))
	return nil
}

func (s *CatalogService) AddCustomer(ctx context.Context, c domain.Customer) error {
	if c.ID == "" {
		return fmt.Errorf("%w: customer id", domain.ErrMissingID)
	}
	if err := s.repo.InsertCustomer(ctx, c); err != nil {
		return fmt.Errorf("add customer %s: %w", c.ID, err)
	}
	s.log.Info("customer added", zap.String("customer_id", c.ID))
	return nil
}

// AddProduct keeps at most three tags.
func (s *CatalogService) AddProduct(ctx context.Context, p domain.Product) error {
	if p.ID == "" || p.VendorID == "" {
		return fmt.Errorf("%w: product and vendor id", domain.ErrMissingID)
	}
	if p.Inventory < 0 {
		return fmt.Errorf("%w: negative inventory %d", domain.ErrInvalidProduct, p.Inventory)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price %s", domain.ErrInvalidProduct, p.Price)
	}
	p.Tags = domain.NormalizeTags(p.Tags)

	if err := s.repo.InsertProduct(ctx, p); err != nil {
		return fmt.Errorf("add product %s: %w", p.ID, err)
	}
	s.log.Info("product added",
		zap.String("product_id", p.ID),
		zap.String("vendor_id", p.VendorID),
		zap.Int("inventory", p.Inventory),
	)
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	products, err := s.repo.SearchProducts(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, fmt.Errorf("search products %q: %w", keyword, err)
	}
	return products, nil
}

func (s *CatalogService) ListProductsByVendor(ctx context.Context, vendorID string) ([]domain.Product, error) {
	products, err := s.repo.ListProductsByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list products of %s: %w", vendorID, err)
	}
	return products, nil
}

// StockLevel serves inventory from the stock cache when possible. Cache errors fall back to the database.
func (s *CatalogService) StockLevel(ctx context.Context, productID string) (int, error) {
	if s.cache != nil {
		stock, ok, err := s.cache.GetStock(ctx, productID)
		if err != nil {
			s.log.Warn("stock cache read failed", zap.String("product_id", productID), zap.Error(err))
		} else if ok {
			return stock, nil
		}
	}

	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	if s.cache != nil {
		if err := s.cache.CacheStock(ctx, productID, p.Inventory); err != nil {
			s.log.Warn("stock cache write failed", zap.String("product_id", productID), zap.Error(err))
		}
	}
	return p.Inventory, nil
}
