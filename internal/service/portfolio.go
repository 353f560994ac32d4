package service

import (
	"context"
	"fmt"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Holding is one position in a user's portfolio report, enriched with
// instrument details and, when an equilibrium price exists, a
// point-in-time valuation.
type Holding struct {
	StockID          string           `json:"stock_id"`
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name"`
	Quantity         int64            `json:"quantity"`
	AvgPurchasePrice decimal.Decimal  `json:"avg_purchase_price"`
	CurrentPrice     *decimal.Decimal `json:"current_price,omitempty"`
	MarketValue      *decimal.Decimal `json:"market_value,omitempty"`
	Profit           *decimal.Decimal `json:"profit,omitempty"`
}

// PortfolioReport summarizes all of a user's positions.
type PortfolioReport struct {
	UserID      string          `json:"user_id"`
	Holdings    []Holding       `json:"holdings"`
	TotalValue  decimal.Decimal `json:"total_value"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// PortfolioService produces read-only holdings reports. It never
// mutates positions; only order execution does that.
type PortfolioService struct {
	store   domain.Store
	pricing *PricingService
}

// NewPortfolioService creates a new PortfolioService instance.
func NewPortfolioService(store domain.Store, pricing *PricingService) *PortfolioService {
	return &PortfolioService{store: store, pricing: pricing}
}

// UserHoldings lists the user's positions with stock details. Positions
// whose stock vanished from the registry are skipped. Valuation fields
// are filled only for stocks with a current equilibrium price.
func (s *PortfolioService) UserHoldings(ctx context.Context, userID string) (*PortfolioReport, error) {
	portfolios, err := s.store.FindPortfoliosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}

	report := &PortfolioReport{
		UserID:   userID,
		Holdings: make([]Holding, 0, len(portfolios)),
	}

	for _, p := range portfolios {
		stock, err := s.store.FindStockByID(ctx, p.StockID)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("load stock %s: %w", p.StockID, err)
		}

		holding := Holding{
			StockID:          p.StockID,
			Symbol:           stock.Symbol,
			Name:             stock.Name,
			Quantity:         p.Quantity,
			AvgPurchasePrice: p.AvgPurchasePrice,
		}

		quote, err := s.pricing.Equilibrium(ctx, p.StockID)
		if err != nil {
			return nil, err
		}
		if quote.EquilibriumPrice != nil {
			current := *quote.EquilibriumPrice
			value := p.MarketValue(current)
			profit := p.Profit(current)
			holding.CurrentPrice = &current
			holding.MarketValue = &value
			holding.Profit = &profit
			report.TotalValue = report.TotalValue.Add(value)
			report.TotalProfit = report.TotalProfit.Add(profit)
		}

		report.Holdings = append(report.Holdings, holding)
	}

	return report, nil
}
