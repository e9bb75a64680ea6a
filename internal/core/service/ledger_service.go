package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/port"
)

const (
	minRating = 0.0
	maxRating = 5.0
)

// LedgerService creates, cancels and trims orders while keeping product inventory
// consistent. Each operation is a single store transaction.
type LedgerService struct {
	store port.LedgerStore
	cache port.StockCache
	log   *zap.Logger
	now   func() time.Time
}

// NewLedgerService wires the ledger. cache and log may be nil.
func NewLedgerService(store port.LedgerStore, cache port.StockCache, log *zap.Logger) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{
		store: store,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func (s *LedgerService) CreateOrder(ctx context.Context, orderID, customerID string, items []domain.LineItem) (*domain.Order, error) {
	if orderID == "" || customerID == "" {
		return nil, fmt.Errorf("%w: order and customer id", domain.ErrMissingID)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: product id of line item", domain.ErrMissingID)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s quantity %d", domain.ErrInvalidQuantity, it.ProductID, it.Quantity)
		}
	}

	log := s.opLogger("create_order", zap.String("order_id", orderID), zap.String("customer_id", customerID))

	order := &domain.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     domain.OrderStatusPending,
		CreatedAt:  s.now(),
	}

	err := s.store.WithTx(ctx, func(tx port.LedgerTx) error {
		order.Lines = order.Lines[:0]

		ok, err := tx.CustomerExists(ctx, customerID)
		if err != nil {
			return fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, customerID)
		}

		if err := tx.InsertOrder(ctx, *order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, it := range items {
			product, err := tx.LockProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("lock product %s: %w", it.ProductID, err)
			}
			if product == nil {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, it.ProductID)
			}
			if product.Inventory < it.Quantity {
				return &domain.StockError{
					ProductID: it.ProductID,
					Requested: it.Quantity,
					Available: product.Inventory,
				}
			}

			line := domain.OrderLine{
				ID:        domain.LineID(orderID, i+1),
				OrderID:   orderID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
			}
			if err := tx.InsertOrderLine(ctx, line); err != nil {
				return fmt.Errorf("insert line %s: %w", line.ID, err)
			}
			if err := tx.AdjustInventory(ctx, it.ProductID, -it.Quantity); err != nil {
				return fmt.Errorf("deduct inventory %s: %w", it.ProductID, err)
			}
			order.Lines = append(order.Lines, line)
		}
		return nil
	})
	if err != nil {
		s.logFailure(log, err)
		return nil, err
	}

	s.invalidate(ctx, log, productIDs(order.Lines)...)
	log.Info("order created", zap.Int("lines", len(order.Lines)), zap.String("total", order.Total().StringFixed(2)))
	return order, nil
}

func (s *LedgerService) CancelOrder(ctx context.Context, orderID string) error {
	log := s.opLogger("cancel_order", zap.String("order_id", orderID))

	var lines []domain.OrderLine
	err := s.store.WithTx(ctx, func(tx port.LedgerTx) error {
		if _, err := lockPendingOrder(ctx, tx, orderID); err != nil {
			return err
		}

		var err error
		lines, err = tx.ListOrderLines(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list lines: %w", err)
		}
		for _, l := range lines {
			if err := tx.AdjustInventory(ctx, l.ProductID, l.Quantity); err != nil {
				return fmt.Errorf("restore inventory %s: %w", l.ProductID, err)
			}
		}

		if err := tx.DeleteOrder(ctx, orderID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(log, err)
		return err
	}

	s.invalidate(ctx, log, productIDs(lines)...)
	log.Info("order cancelled", zap.Int("lines_restored", len(lines)))
	return nil
}

func (s *LedgerService) RemoveLine(ctx context.Context, orderID, productID string) error {
	log := s.opLogger("remove_line", zap.String("order_id", orderID), zap.String("product_id", productID))

	restored := 0
	err := s.store.WithTx(ctx, func(tx port.LedgerTx) error {
		restored = 0

		if _, err := lockPendingOrder(ctx, tx, orderID); err != nil {
			return err
		}

		lines, err := tx.ListOrderLines(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list lines: %w", err)
		}
		for _, l := range lines {
			if l.ProductID == productID {
				restored += l.Quantity
			}
		}
		if restored == 0 {
			return fmt.Errorf("%w: product %s in order %s", domain.ErrLineNotFound, productID, orderID)
		}

		if err := tx.AdjustInventory(ctx, productID, restored); err != nil {
			return fmt.Errorf("restore inventory: %w", err)
		}
		if _, err := tx.DeleteOrderLines(ctx, orderID, productID); err != nil {
			return fmt.Errorf("delete line: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(log, err)
		return err
	}

	s.invalidate(ctx, log, productID)
	log.Info("order line removed", zap.Int("quantity_restored", restored))
	return nil
}

// RateLine records a 0-5 rating for the product's line in the order. Re-rating overwrites.
func (s *LedgerService) RateLine(ctx context.Context, orderID, productID string, rating float64) error {
	if math.IsNaN(rating) || rating < minRating || rating > maxRating {
		return fmt.Errorf("%w: got %v", domain.ErrInvalidRating, rating)
	}

	log := s.opLogger("rate_line", zap.String("order_id", orderID), zap.String("product_id", productID))

	ok, err := s.store.UpdateRating(ctx, orderID, productID, rating)
	if err != nil {
		log.Error("rate line failed", zap.Error(err))
		return fmt.Errorf("update rating: %w", err)
	}
	if !ok {
		err := fmt.Errorf("%w: product %s in order %s", domain.ErrLineNotFound, productID, orderID)
		s.logFailure(log, err)
		return err
	}

	log.Info("order line rated", zap.Float64("rating", rating))
	return nil
}

func (s *LedgerService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return order, nil
}

func lockPendingOrder(ctx context.Context, tx port.LedgerTx, orderID string) (*domain.Order, error) {
	order, err := tx.LockOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if !order.Status.Mutable() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrOrderNotCancellable, orderID, order.Status)
	}
	return order, nil
}

func (s *LedgerService) opLogger(op string, fields ...zap.Field) *zap.Logger {
	return s.log.With(append([]zap.Field{zap.String("op", op), zap.String("op_id", uuid.NewString())}, fields...)...)
}

// logFailure logs business rejections at warn and everything else at error.
func (s *LedgerService) logFailure(log *zap.Logger, err error) {
	if isBusinessError(err) {
		log.Warn("ledger operation rejected", zap.Error(err))
		return
	}
	log.Error("ledger operation failed", zap.Error(err))
}

func (s *LedgerService) invalidate(ctx context.Context, log *zap.Logger, ids ...string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.InvalidateStock(ctx, ids...); err != nil {
		log.Warn("stock cache invalidation failed", zap.Strings("product_ids", ids), zap.Error(err))
	}
}

func productIDs(lines []domain.OrderLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

var businessErrors = []error{
	domain.ErrCustomerNotFound,
	domain.ErrProductNotFound,
	domain.ErrInsufficientStock,
	domain.ErrOrderNotFound,
	domain.ErrOrderNotCancellable,
	domain.ErrLineNotFound,
	domain.ErrDuplicateIdentity,
	domain.ErrRetryable,
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
