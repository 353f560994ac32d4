package domain

import (
	"context"
	"time"
)

// OrderRepository defines persistence for orders. UpdateOrderStatus is
// the conditional transition used for execution and cancellation: the
// update applies only while the order is still in the expected status,
// so concurrent callers cannot both win.
type OrderRepository interface {
	SaveOrder(ctx context.Context, order *Order) error
	FindOrderByID(ctx context.Context, id string) (*Order, error)
	FindOrdersByUser(ctx context.Context, userID string) ([]*Order, error)
	FindOrdersByStock(ctx context.Context, stockID string) ([]*Order, error)
	FindOrdersByStatus(ctx context.Context, status string) ([]*Order, error)
	FindPendingOrdersByStock(ctx context.Context, stockID, side string) ([]*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error
	// UpdateOrderStatus transitions id from the expected status to the new
	// one, stamping executedAt when non-nil. It returns a NotFoundError if
	// the order does not exist and a ConflictError wrapping
	// ErrStatusChanged if the order exists but is no longer in from.
	UpdateOrderStatus(ctx context.Context, id, from, to string, executedAt *time.Time) error
	DeleteOrder(ctx context.Context, id string) error
}

// PortfolioRepository defines persistence for positions keyed by
// (userID, stockID). SavePortfolio is an idempotent upsert.
type PortfolioRepository interface {
	FindPortfolio(ctx context.Context, userID, stockID string) (*Portfolio, error)
	FindPortfoliosByUser(ctx context.Context, userID string) ([]*Portfolio, error)
	SavePortfolio(ctx context.Context, portfolio *Portfolio) error
	DeletePortfolio(ctx context.Context, userID, stockID string) error
}

// StockRepository defines persistence for tradable instruments.
type StockRepository interface {
	SaveStock(ctx context.Context, stock *Stock) error
	FindStockByID(ctx context.Context, id string) (*Stock, error)
	FindStockBySymbol(ctx context.Context, symbol string) (*Stock, error)
	FindAllStocks(ctx context.Context) ([]*Stock, error)
	FindAvailableStocks(ctx context.Context) ([]*Stock, error)
	UpdateStock(ctx context.Context, stock *Stock) error
	DeleteStock(ctx context.Context, id string) error
}

// Store bundles the repositories behind one storage backend and adds
// transactional execution: fn runs against a Store whose writes all
// apply or all roll back together.
type Store interface {
	OrderRepository
	PortfolioRepository
	StockRepository
	InTransaction(ctx context.Context, fn func(Store) error) error
}
