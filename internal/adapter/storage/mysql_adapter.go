package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/port"
)

// Line ids are {order_id}_{seq}; ordering by length first keeps _10 after _9.
const lineOrder = `ORDER BY CHAR_LENGTH(order_detail_id), order_detail_id`

const dateLayout = "2006-01-02"

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

var (
	_ port.LedgerStore       = (*MySQLAdapter)(nil)
	_ port.CatalogRepository = (*MySQLAdapter)(nil)
)

func (m *MySQLAdapter) WithTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", domain.ErrConnectionUnavailable, err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (m *MySQLAdapter) UpdateRating(ctx context.Context, orderID, productID string, rating float64) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE OrderDetail SET rating = ?
		WHERE order_id = ? AND product_id = ?`,
		rating, orderID, productID,
	)
	if err != nil {
		return false, classify(fmt.Errorf("update rating: %w", err))
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return true, nil
	}

	// MySQL counts changed rows, so re-rating with the same value reports 0.
	var count int
	err = m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM OrderDetail WHERE order_id = ? AND product_id = ?`,
		orderID, productID,
	).Scan(&count)
	if err != nil {
		return false, classify(fmt.Errorf("count lines: %w", err))
	}
	return count > 0, nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := scanOrder(m.db.QueryRowContext(ctx, `
		SELECT order_id, customer_id, order_date, status
		FROM Orders WHERE order_id = ?`, orderID,
	))
	if err != nil || order == nil {
		return nil, err
	}

	order.Lines, err = queryLines(ctx, m.db, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) CustomerExists(ctx context.Context, customerID string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, `SELECT 1 FROM Customer WHERE customer_id = ?`, customerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query customer: %w", err)
	}
	return true, nil
}

func (t *mysqlTx) InsertOrder(ctx context.Context, order domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO Orders (order_id, customer_id, order_date, status)
		VALUES (?, ?, ?, ?)`,
		order.ID, order.CustomerID, order.CreatedAt.Format(dateLayout), string(order.Status),
	)
	return err
}

func (t *mysqlTx) LockProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return scanProduct(t.tx.QueryRowContext(ctx, `
		SELECT product_id, vendor_id, product_name, listed_price, tag1, tag2, tag3, inventory
		FROM Product WHERE product_id = ?
		FOR UPDATE`, productID,
	))
}

func (t *mysqlTx) AdjustInventory(ctx context.Context, productID string, delta int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE Product SET inventory = inventory + ?
		WHERE product_id = ? AND inventory + ? >= 0`,
		delta, productID, delta,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s cannot change by %d", domain.ErrInsufficientStock, productID, delta)
	}
	return nil
}

func (t *mysqlTx) InsertOrderLine(ctx context.Context, line domain.OrderLine) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO OrderDetail (order_detail_id, order_id, product_id, quantity, unit_price)
		VALUES (?, ?, ?, ?, ?)`,
		line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice,
	)
	return err
}

func (t *mysqlTx) LockOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return scanOrder(t.tx.QueryRowContext(ctx, `
		SELECT order_id, customer_id, order_date, status
		FROM Orders WHERE order_id = ?
		FOR UPDATE`, orderID,
	))
}

func (t *mysqlTx) ListOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	return queryLines(ctx, t.tx, orderID)
}

func (t *mysqlTx) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM Orders WHERE order_id = ?`, orderID)
	return err
}

func (t *mysqlTx) DeleteOrderLines(ctx context.Context, orderID, productID string) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		DELETE FROM OrderDetail WHERE order_id = ? AND product_id = ?`,
		orderID, productID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanOrder(row *sql.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.CreatedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func queryLines(ctx context.Context, q queryer, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT order_detail_id, order_id, product_id, quantity, unit_price, rating
		FROM OrderDetail WHERE order_id = ? `+lineOrder, orderID)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			l      domain.OrderLine
			rating sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &rating); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if rating.Valid {
			r := rating.Float64
			l.Rating = &r
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lines: %w", err)
	}
	return lines, nil
}
