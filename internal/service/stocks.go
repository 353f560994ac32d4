package service

import (
	"context"
	"errors"
	"fmt"

	"stock_go/internal/domain"

	"github.com/google/uuid"
)

// ErrSymbolTaken is returned when registering a stock whose symbol is
// already in use.
var ErrSymbolTaken = errors.New("stock symbol already registered")

// StockService manages the registry of tradable instruments.
type StockService struct {
	stocks domain.StockRepository
}

// NewStockService creates a new StockService instance.
func NewStockService(stocks domain.StockRepository) *StockService {
	return &StockService{stocks: stocks}
}

// Register adds a new instrument. Symbols are unique; the new stock
// starts available unless suspended later.
func (s *StockService) Register(ctx context.Context, symbol, name, companyName string) (*domain.Stock, error) {
	stock, err := domain.NewStock("stk_"+uuid.NewString(), symbol, name, companyName, true)
	if err != nil {
		return nil, err
	}

	if _, err := s.stocks.FindStockBySymbol(ctx, symbol); err == nil {
		return nil, &domain.ValidationError{Field: "symbol", Err: ErrSymbolTaken}
	} else if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("check symbol: %w", err)
	}

	if err := s.stocks.SaveStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("save stock: %w", err)
	}
	return stock, nil
}

// Get returns one stock by id.
func (s *StockService) Get(ctx context.Context, id string) (*domain.Stock, error) {
	return s.stocks.FindStockByID(ctx, id)
}

// List returns every registered stock.
func (s *StockService) List(ctx context.Context) ([]*domain.Stock, error) {
	return s.stocks.FindAllStocks(ctx)
}

// ListAvailable returns only stocks open for trading.
func (s *StockService) ListAvailable(ctx context.Context) ([]*domain.Stock, error) {
	return s.stocks.FindAvailableStocks(ctx)
}

// SetAvailability opens or suspends a stock for trading.
func (s *StockService) SetAvailability(ctx context.Context, id string, available bool) (*domain.Stock, error) {
	stock, err := s.stocks.FindStockByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if available {
		stock.MakeAvailable()
	} else {
		stock.MakeUnavailable()
	}

	if err := s.stocks.UpdateStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return stock, nil
}
