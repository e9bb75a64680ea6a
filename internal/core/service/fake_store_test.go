package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/port"
)

type ledgerState struct {
	customers map[string]bool
	products  map[string]domain.Product
	orders    map[string]domain.Order
	lines     []domain.OrderLine
}

func (s ledgerState) clone() ledgerState {
	out := ledgerState{
		customers: make(map[string]bool, len(s.customers)),
		products:  make(map[string]domain.Product, len(s.products)),
		orders:    make(map[string]domain.Order, len(s.orders)),
		lines:     append([]domain.OrderLine(nil), s.lines...),
	}
	for k, v := range s.customers {
		out.customers[k] = v
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	return out
}

// fakeStore serializes transactions behind one mutex, each working on a copy that is kept only on success.
type fakeStore struct {
	mu    sync.Mutex
	state ledgerState

	txCalls     atomic.Int32
	ratingCalls atomic.Int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: ledgerState{
		customers: map[string]bool{},
		products:  map[string]domain.Product{},
		orders:    map[string]domain.Order{},
	}}
}

func (s *fakeStore) addCustomer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.customers[id] = true
}

func (s *fakeStore) addProduct(id string, price int64, inventory int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[id] = domain.Product{
		ID:        id,
		VendorID:  "V1",
		Name:      id,
		Price:     decimal.NewFromInt(price),
		Inventory: inventory,
	}
}

func (s *fakeStore) setPrice(id string, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.products[id]
	p.Price = decimal.NewFromInt(price)
	s.state.products[id] = p
}

func (s *fakeStore) setStatus(orderID string, status domain.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.state.orders[orderID]
	o.Status = status
	s.state.orders[orderID] = o
}

func (s *fakeStore) inventory(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id].Inventory
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

func (s *fakeStore) lineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.lines)
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	s.txCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fakeTx{st: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.st
	return nil
}

func (s *fakeStore) UpdateRating(ctx context.Context, orderID, productID string, rating float64) (bool, error) {
	s.ratingCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := false
	for i, l := range s.state.lines {
		if l.OrderID == orderID && l.ProductID == productID {
			r := rating
			s.state.lines[i].Rating = &r
			matched = true
		}
	}
	return matched, nil
}

func (s *fakeStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.state.orders[orderID]
	if !ok {
		return nil, nil
	}
	for _, l := range s.state.lines {
		if l.OrderID == orderID {
			o.Lines = append(o.Lines, l)
		}
	}
	return &o, nil
}

type fakeTx struct {
	st ledgerState
}

func (t *fakeTx) CustomerExists(ctx context.Context, customerID string) (bool, error) {
	return t.st.customers[customerID], nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order domain.Order) error {
	if _, ok := t.st.orders[order.ID]; ok {
		return domain.ErrDuplicateIdentity
	}
	order.Lines = nil
	t.st.orders[order.ID] = order
	return nil
}

func (t *fakeTx) LockProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, ok := t.st.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *fakeTx) AdjustInventory(ctx context.Context, productID string, delta int) error {
	p, ok := t.st.products[productID]
	if !ok || p.Inventory+delta < 0 {
		return domain.ErrInsufficientStock
	}
	p.Inventory += delta
	t.st.products[productID] = p
	return nil
}

func (t *fakeTx) InsertOrderLine(ctx context.Context, line domain.OrderLine) error {
	for _, l := range t.st.lines {
		if l.ID == line.ID {
			return domain.ErrDuplicateIdentity
		}
	}
	t.st.lines = append(t.st.lines, line)
	return nil
}

func (t *fakeTx) LockOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, ok := t.st.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (t *fakeTx) ListOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	for _, l := range t.st.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (t *fakeTx) DeleteOrder(ctx context.Context, orderID string) error {
	delete(t.st.orders, orderID)
	t.removeLines(func(l domain.OrderLine) bool { return l.OrderID == orderID })
	return nil
}

func (t *fakeTx) DeleteOrderLines(ctx context.Context, orderID, productID string) (int64, error) {
	n := t.removeLines(func(l domain.OrderLine) bool {
		return l.OrderID == orderID && l.ProductID == productID
	})
	return int64(n), nil
}

func (t *fakeTx) removeLines(match func(domain.OrderLine) bool) int {
	kept := t.st.lines[:0:0]
	removed := 0
	for _, l := range t.st.lines {
		if match(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	t.st.lines = kept
	return removed
}

type fakeCache struct {
	mu          sync.Mutex
	stock       map[string]int
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{stock: map[string]int{}}
}

func (c *fakeCache) GetStock(ctx context.Context, productID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	v, ok := c.stock[productID]
	return v, ok, nil
}

func (c *fakeCache) CacheStock(ctx context.Context, productID string, stock int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stock[productID]; !ok {
		c.stock[productID] = stock
	}
	return nil
}

func (c *fakeCache) InvalidateStock(ctx context.Context, productIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range productIDs {
		delete(c.stock, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}
