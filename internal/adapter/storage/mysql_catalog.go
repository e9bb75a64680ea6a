package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/electronic-shop/internal/core/domain"
)

const productColumns = `product_id, vendor_id, product_name, listed_price, tag1, tag2, tag3, inventory`

type rowScanner interface {
	Scan(dest ...any) error
}

func (m *MySQLAdapter) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT v.vendor_id, v.business_name, v.geographical_presence, vs.feedback_score
		FROM Vendor v
		LEFT JOIN VendorScores vs ON v.vendor_id = vs.vendor_id
		ORDER BY v.vendor_id`)
	if err != nil {
		return nil, classify(fmt.Errorf("query vendors: %w", err))
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var (
			v     domain.Vendor
			score sql.NullFloat64
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.Region, &score); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		if score.Valid {
			s := score.Float64
			v.Score = &s
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (m *MySQLAdapter) InsertVendor(ctx context.Context, v domain.Vendor) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO Vendor (vendor_id, business_name, geographical_presence)
		VALUES (?, ?, ?)`,
		v.ID, v.Name, v.Region,
	)
	return classify(err)
}

func (m *MySQLAdapter) InsertCustomer(ctx context.Context, c domain.Customer) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO Customer (customer_id, contact_number, shipping_address)
		VALUES (?, ?, ?)`,
		c.ID, c.ContactNumber, c.ShippingAddress,
	)
	return classify(err)
}

func (m *MySQLAdapter) InsertProduct(ctx context.Context, p domain.Product) error {
	tags := tagColumns(p.Tags)
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO Product (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.VendorID, p.Name, p.Price, tags[0], tags[1], tags[2], p.Inventory,
	)
	if n, ok := mysqlErrorNumber(err); ok && n == errNoReferencedRow {
		return fmt.Errorf("%w: %s", domain.ErrVendorNotFound, p.VendorID)
	}
	return classify(err)
}

func (m *MySQLAdapter) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	pattern := "%" + keyword + "%"
	return m.queryProducts(ctx, `
		SELECT `+productColumns+` FROM Product
		WHERE tag1 LIKE ? OR tag2 LIKE ? OR tag3 LIKE ? OR product_name LIKE ?
		ORDER BY listed_price DESC, product_id`,
		pattern, pattern, pattern, pattern,
	)
}

func (m *MySQLAdapter) ListProductsByVendor(ctx context.Context, vendorID string) ([]domain.Product, error) {
	return m.queryProducts(ctx, `
		SELECT `+productColumns+` FROM Product
		WHERE vendor_id = ?
		ORDER BY product_id`, vendorID,
	)
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return scanProduct(m.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM Product WHERE product_id = ?`, productID,
	))
}

func (m *MySQLAdapter) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("query products: %w", err))
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// scanProduct returns nil, nil when the row does not exist.
func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p    domain.Product
		tags [domain.MaxProductTags]sql.NullString
	)
	err := row.Scan(&p.ID, &p.VendorID, &p.Name, &p.Price, &tags[0], &tags[1], &tags[2], &p.Inventory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	for _, t := range tags {
		if t.Valid && t.String != "" {
			p.Tags = append(p.Tags, t.String)
		}
	}
	return &p, nil
}

func tagColumns(tags []string) [domain.MaxProductTags]sql.NullString {
	var out [domain.MaxProductTags]sql.NullString
	for i, t := range domain.NormalizeTags(tags) {
		out[i] = sql.NullString{String: t, Valid: true}
	}
	return out
}
