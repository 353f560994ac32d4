package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock_go/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradingService owns the order lifecycle: placement against the stock
// registry, the PENDING -> EXECUTED/CANCELLED transitions, and the
// portfolio side-effects of execution.
type TradingService struct {
	store domain.Store
	locks keyedMutex
}

// NewTradingService creates a new TradingService instance.
func NewTradingService(store domain.Store) *TradingService {
	return &TradingService{store: store}
}

// PlaceOrderRequest carries the inputs for order placement.
type PlaceOrderRequest struct {
	UserID   string          `json:"user_id"`
	StockID  string          `json:"stock_id"`
	Side     string          `json:"side"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PlaceOrder validates the stock, constructs a PENDING order and
// persists it. The order entity validates quantity and price itself.
func (s *TradingService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	stock, err := s.store.FindStockByID(ctx, req.StockID)
	if err != nil {
		return nil, err
	}
	if !stock.IsAvailable {
		return nil, &domain.ValidationError{Field: "stock_id", Err: domain.ErrStockUnavailable}
	}

	order, err := domain.NewOrder("ord_"+uuid.NewString(), req.UserID, req.StockID, req.Side, req.Quantity, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	return order, nil
}

// ExecuteOrder transitions the order to EXECUTED at the supplied
// execution price and applies the portfolio effect. The transition and
// the portfolio mutation run in one transaction: both apply or neither.
//
// The execution price comes from the caller (a discovered or negotiated
// price); the order's own limit price plays no part in settlement.
func (s *TradingService) ExecuteOrder(ctx context.Context, orderID string, executionPrice decimal.Decimal) (*domain.Order, error) {
	if !executionPrice.IsPositive() {
		return nil, &domain.ValidationError{Field: "execution_price", Err: domain.ErrNonPositivePrice}
	}

	order, err := s.store.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPending() {
		return nil, &domain.StateError{Op: "execute", Status: order.Status}
	}

	// Serialize executions touching the same (user, stock) position.
	unlock := s.locks.lock(order.UserID + "/" + order.StockID)
	defer unlock()

	executedAt := time.Now()
	err = s.store.InTransaction(ctx, func(tx domain.Store) error {
		// Conditional transition: a concurrent execute or cancel that got
		// here first makes this a ConflictError, and nothing is applied.
		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusExecuted, &executedAt); err != nil {
			return err
		}
		return applyExecution(ctx, tx, order, executionPrice)
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusExecuted
	order.ExecutedAt = &executedAt
	return order, nil
}

// applyExecution updates the (user, stock) position at the execution
// price. An empty resulting position is deleted rather than kept.
func applyExecution(ctx context.Context, tx domain.Store, order *domain.Order, price decimal.Decimal) error {
	portfolio, err := tx.FindPortfolio(ctx, order.UserID, order.StockID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return fmt.Errorf("load portfolio: %w", err)
		}
		if order.Side == domain.SideSell {
			// Selling shares never owned. The legacy behavior silently
			// ignored this; it is surfaced as an oversell instead.
			return &domain.StateError{Op: "execute sell", Status: "no position"}
		}
		portfolio, err = domain.NewPortfolio(order.UserID, order.StockID, 0, decimal.Zero)
		if err != nil {
			return err
		}
	}

	if order.Side == domain.SideBuy {
		if err := portfolio.AddShares(order.Quantity, price); err != nil {
			return err
		}
	} else {
		if err := portfolio.RemoveShares(order.Quantity); err != nil {
			return err
		}
	}

	if portfolio.IsEmpty() {
		return tx.DeletePortfolio(ctx, order.UserID, order.StockID)
	}
	return tx.SavePortfolio(ctx, portfolio)
}

// CancelOrder transitions a PENDING order to CANCELLED. Cancellation
// has no portfolio effect.
func (s *TradingService) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.store.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPending() {
		return nil, &domain.StateError{Op: "cancel", Status: order.Status}
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusCancelled, nil); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCancelled
	return order, nil
}

// Order returns one order by id.
func (s *TradingService) Order(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.FindOrderByID(ctx, orderID)
}

// OrdersByUser lists all orders placed by the user.
func (s *TradingService) OrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.store.FindOrdersByUser(ctx, userID)
}

// OrdersByStock lists all orders on the stock.
func (s *TradingService) OrdersByStock(ctx context.Context, stockID string) ([]*domain.Order, error) {
	return s.store.FindOrdersByStock(ctx, stockID)
}

// OrdersByStatus lists all orders in the given lifecycle state.
func (s *TradingService) OrdersByStatus(ctx context.Context, status string) ([]*domain.Order, error) {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusExecuted, domain.OrderStatusCancelled:
	default:
		return nil, &domain.ValidationError{Field: "status", Err: fmt.Errorf("unknown order status %q", status)}
	}
	return s.store.FindOrdersByStatus(ctx, status)
}

// keyedMutex hands out one mutex per key, serializing the portfolio
// read-modify-write per (user, stock) pair.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
