package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"stock_go/internal/domain"
)

// MemoryStore is a mutex-guarded, map-backed domain.Store. It is the
// development and test backend; transactions snapshot the maps and
// restore them when fn fails, so a failed transaction leaves no writes.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

// memoryData holds the actual tables. All methods assume the caller
// already holds the store lock.
type memoryData struct {
	orders     map[string]domain.Order
	portfolios map[string]domain.Portfolio // keyed userID + "/" + stockID
	stocks     map[string]domain.Stock
}

func newMemoryData() *memoryData {
	return &memoryData{
		orders:     make(map[string]domain.Order),
		portfolios: make(map[string]domain.Portfolio),
		stocks:     make(map[string]domain.Stock),
	}
}

func portfolioKey(userID, stockID string) string {
	return userID + "/" + stockID
}

// snapshot copies every table. Entries are values, so a map copy is a
// deep copy for rollback purposes.
func (d *memoryData) snapshot() *memoryData {
	s := &memoryData{
		orders:     make(map[string]domain.Order, len(d.orders)),
		portfolios: make(map[string]domain.Portfolio, len(d.portfolios)),
		stocks:     make(map[string]domain.Stock, len(d.stocks)),
	}
	for k, v := range d.orders {
		s.orders[k] = v
	}
	for k, v := range d.portfolios {
		s.portfolios[k] = v
	}
	for k, v := range d.stocks {
		s.stocks[k] = v
	}
	return s
}

func (d *memoryData) restore(s *memoryData) {
	d.orders = s.orders
	d.portfolios = s.portfolios
	d.stocks = s.stocks
}

// ======================================================================================
// Order operations
// ======================================================================================

func (d *memoryData) saveOrder(order *domain.Order) error {
	d.orders[order.ID] = *order
	return nil
}

func (d *memoryData) findOrderByID(id string) (*domain.Order, error) {
	order, ok := d.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	return &order, nil
}

func (d *memoryData) findOrders(match func(*domain.Order) bool) []*domain.Order {
	var result []*domain.Order
	for id := range d.orders {
		order := d.orders[id]
		if match(&order) {
			result = append(result, &order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (d *memoryData) updateOrder(order *domain.Order) error {
	if _, ok := d.orders[order.ID]; !ok {
		return &domain.NotFoundError{Entity: "order", ID: order.ID}
	}
	d.orders[order.ID] = *order
	return nil
}

func (d *memoryData) updateOrderStatus(id, from, to string, executedAt *time.Time) error {
	order, ok := d.orders[id]
	if !ok {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	if order.Status != from {
		return &domain.ConflictError{Op: "update order status", Err: domain.ErrStatusChanged}
	}
	order.Status = to
	if executedAt != nil {
		at := *executedAt
		order.ExecutedAt = &at
	}
	d.orders[id] = order
	return nil
}

func (d *memoryData) deleteOrder(id string) error {
	delete(d.orders, id)
	return nil
}

// ======================================================================================
// Portfolio operations
// ======================================================================================

func (d *memoryData) findPortfolio(userID, stockID string) (*domain.Portfolio, error) {
	p, ok := d.portfolios[portfolioKey(userID, stockID)]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "portfolio", ID: portfolioKey(userID, stockID)}
	}
	return &p, nil
}

func (d *memoryData) findPortfoliosByUser(userID string) []*domain.Portfolio {
	var result []*domain.Portfolio
	for k := range d.portfolios {
		p := d.portfolios[k]
		if p.UserID == userID {
			result = append(result, &p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StockID < result[j].StockID
	})
	return result
}

func (d *memoryData) savePortfolio(p *domain.Portfolio) error {
	p.UpdatedAt = time.Now()
	d.portfolios[portfolioKey(p.UserID, p.StockID)] = *p
	return nil
}

func (d *memoryData) deletePortfolio(userID, stockID string) error {
	delete(d.portfolios, portfolioKey(userID, stockID))
	return nil
}

// ======================================================================================
// Stock operations
// ======================================================================================

func (d *memoryData) saveStock(stock *domain.Stock) error {
	d.stocks[stock.ID] = *stock
	return nil
}

func (d *memoryData) findStockByID(id string) (*domain.Stock, error) {
	stock, ok := d.stocks[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "stock", ID: id}
	}
	return &stock, nil
}

func (d *memoryData) findStockBySymbol(symbol string) (*domain.Stock, error) {
	for id := range d.stocks {
		stock := d.stocks[id]
		if stock.Symbol == symbol {
			return &stock, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "stock", ID: symbol}
}

func (d *memoryData) findStocks(match func(*domain.Stock) bool) []*domain.Stock {
	var result []*domain.Stock
	for id := range d.stocks {
		stock := d.stocks[id]
		if match(&stock) {
			result = append(result, &stock)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}

func (d *memoryData) updateStock(stock *domain.Stock) error {
	if _, ok := d.stocks[stock.ID]; !ok {
		return &domain.NotFoundError{Entity: "stock", ID: stock.ID}
	}
	d.stocks[stock.ID] = *stock
	return nil
}

func (d *memoryData) deleteStock(id string) error {
	delete(d.stocks, id)
	return nil
}

// ======================================================================================
// domain.Store implementation (locking wrappers)
// ======================================================================================

func (m *MemoryStore) SaveOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.saveOrder(order)
}

func (m *MemoryStore) FindOrderByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findOrderByID(id)
}

func (m *MemoryStore) FindOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findOrders(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryStore) FindOrdersByStock(_ context.Context, stockID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findOrders(func(o *domain.Order) bool { return o.StockID == stockID }), nil
}

func (m *MemoryStore) FindOrdersByStatus(_ context.Context, status string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findOrders(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (m *MemoryStore) FindPendingOrdersByStock(_ context.Context, stockID, side string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findOrders(func(o *domain.Order) bool {
		return o.StockID == stockID && o.Side == side && o.Status == domain.OrderStatusPending
	}), nil
}

func (m *MemoryStore) UpdateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.updateOrder(order)
}

func (m *MemoryStore) UpdateOrderStatus(_ context.Context, id, from, to string, executedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.updateOrderStatus(id, from, to, executedAt)
}

func (m *MemoryStore) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteOrder(id)
}

func (m *MemoryStore) FindPortfolio(_ context.Context, userID, stockID string) (*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findPortfolio(userID, stockID)
}

func (m *MemoryStore) FindPortfoliosByUser(_ context.Context, userID string) ([]*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findPortfoliosByUser(userID), nil
}

func (m *MemoryStore) SavePortfolio(_ context.Context, p *domain.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.savePortfolio(p)
}

func (m *MemoryStore) DeletePortfolio(_ context.Context, userID, stockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deletePortfolio(userID, stockID)
}

func (m *MemoryStore) SaveStock(_ context.Context, stock *domain.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.saveStock(stock)
}

func (m *MemoryStore) FindStockByID(_ context.Context, id string) (*domain.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findStockByID(id)
}

func (m *MemoryStore) FindStockBySymbol(_ context.Context, symbol string) (*domain.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findStockBySymbol(symbol)
}

func (m *MemoryStore) FindAllStocks(_ context.Context) ([]*domain.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findStocks(func(*domain.Stock) bool { return true }), nil
}

func (m *MemoryStore) FindAvailableStocks(_ context.Context) ([]*domain.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.findStocks(func(s *domain.Stock) bool { return s.IsAvailable }), nil
}

func (m *MemoryStore) UpdateStock(_ context.Context, stock *domain.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.updateStock(stock)
}

func (m *MemoryStore) DeleteStock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteStock(id)
}

// InTransaction runs fn against an unlocked view of the data while the
// store lock is held, restoring a pre-transaction snapshot when fn fails.
func (m *MemoryStore) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.data.snapshot()
	if err := fn(&memoryTx{data: m.data}); err != nil {
		m.data.restore(snap)
		return err
	}
	return nil
}

// memoryTx is the transactional view: same data, no locking (the outer
// InTransaction holds the lock for the whole transaction).
type memoryTx struct {
	data *memoryData
}

func (t *memoryTx) SaveOrder(_ context.Context, order *domain.Order) error {
	return t.data.saveOrder(order)
}

func (t *memoryTx) FindOrderByID(_ context.Context, id string) (*domain.Order, error) {
	return t.data.findOrderByID(id)
}

func (t *memoryTx) FindOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	return t.data.findOrders(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (t *memoryTx) FindOrdersByStock(_ context.Context, stockID string) ([]*domain.Order, error) {
	return t.data.findOrders(func(o *domain.Order) bool { return o.StockID == stockID }), nil
}

func (t *memoryTx) FindOrdersByStatus(_ context.Context, status string) ([]*domain.Order, error) {
	return t.data.findOrders(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (t *memoryTx) FindPendingOrdersByStock(_ context.Context, stockID, side string) ([]*domain.Order, error) {
	return t.data.findOrders(func(o *domain.Order) bool {
		return o.StockID == stockID && o.Side == side && o.Status == domain.OrderStatusPending
	}), nil
}

func (t *memoryTx) UpdateOrder(_ context.Context, order *domain.Order) error {
	return t.data.updateOrder(order)
}

func (t *memoryTx) UpdateOrderStatus(_ context.Context, id, from, to string, executedAt *time.Time) error {
	return t.data.updateOrderStatus(id, from, to, executedAt)
}

func (t *memoryTx) DeleteOrder(_ context.Context, id string) error {
	return t.data.deleteOrder(id)
}

func (t *memoryTx) FindPortfolio(_ context.Context, userID, stockID string) (*domain.Portfolio, error) {
	return t.data.findPortfolio(userID, stockID)
}

func (t *memoryTx) FindPortfoliosByUser(_ context.Context, userID string) ([]*domain.Portfolio, error) {
	return t.data.findPortfoliosByUser(userID), nil
}

func (t *memoryTx) SavePortfolio(_ context.Context, p *domain.Portfolio) error {
	return t.data.savePortfolio(p)
}

func (t *memoryTx) DeletePortfolio(_ context.Context, userID, stockID string) error {
	return t.data.deletePortfolio(userID, stockID)
}

func (t *memoryTx) SaveStock(_ context.Context, stock *domain.Stock) error {
	return t.data.saveStock(stock)
}

func (t *memoryTx) FindStockByID(_ context.Context, id string) (*domain.Stock, error) {
	return t.data.findStockByID(id)
}

func (t *memoryTx) FindStockBySymbol(_ context.Context, symbol string) (*domain.Stock, error) {
	return t.data.findStockBySymbol(symbol)
}

func (t *memoryTx) FindAllStocks(_ context.Context) ([]*domain.Stock, error) {
	return t.data.findStocks(func(*domain.Stock) bool { return true }), nil
}

func (t *memoryTx) FindAvailableStocks(_ context.Context) ([]*domain.Stock, error) {
	return t.data.findStocks(func(s *domain.Stock) bool { return s.IsAvailable }), nil
}

func (t *memoryTx) UpdateStock(_ context.Context, stock *domain.Stock) error {
	return t.data.updateStock(stock)
}

func (t *memoryTx) DeleteStock(_ context.Context, id string) error {
	return t.data.deleteStock(id)
}

// InTransaction on a transactional view just runs fn: the enclosing
// transaction already provides atomicity.
func (t *memoryTx) InTransaction(_ context.Context, fn func(domain.Store) error) error {
	return fn(t)
}
