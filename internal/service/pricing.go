package service

import (
	"context"
	"fmt"
	"sort"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Quote is the point-in-time result of price discovery for one stock.
// EquilibriumPrice is nil when the book is empty on either side or does
// not cross.
type Quote struct {
	StockID          string           `json:"stock_id"`
	EquilibriumPrice *decimal.Decimal `json:"equilibrium_price"`
	MatchableVolume  int64            `json:"matchable_volume"`
	BuyOrders        int              `json:"buy_orders"`
	SellOrders       int              `json:"sell_orders"`
}

// PricingService derives a theoretical clearing price from the pending
// order book. It only reads: orders are never mutated and no locks are
// taken, so the result is an advisory snapshot.
type PricingService struct {
	orders domain.OrderRepository
}

// NewPricingService creates a new PricingService instance.
func NewPricingService(orders domain.OrderRepository) *PricingService {
	return &PricingService{orders: orders}
}

// Equilibrium computes the clearing price estimate over all PENDING
// orders of the stock: the midpoint between the best bid and the best
// ask when the book crosses, plus the volume matchable at that price.
func (s *PricingService) Equilibrium(ctx context.Context, stockID string) (*Quote, error) {
	buys, err := s.orders.FindPendingOrdersByStock(ctx, stockID, domain.SideBuy)
	if err != nil {
		return nil, fmt.Errorf("load pending buys: %w", err)
	}
	sells, err := s.orders.FindPendingOrdersByStock(ctx, stockID, domain.SideSell)
	if err != nil {
		return nil, fmt.Errorf("load pending sells: %w", err)
	}

	// Best bid first, best ask first.
	sort.Slice(buys, func(i, j int) bool {
		return buys[i].Price.GreaterThan(buys[j].Price)
	})
	sort.Slice(sells, func(i, j int) bool {
		return sells[i].Price.LessThan(sells[j].Price)
	})

	quote := &Quote{
		StockID:    stockID,
		BuyOrders:  len(buys),
		SellOrders: len(sells),
	}

	if len(buys) == 0 || len(sells) == 0 {
		return quote, nil
	}

	highestBid := buys[0].Price
	lowestAsk := sells[0].Price
	if highestBid.LessThan(lowestAsk) {
		// Book does not cross.
		return quote, nil
	}

	price := highestBid.Add(lowestAsk).Div(decimal.NewFromInt(2))
	quote.EquilibriumPrice = &price
	quote.MatchableVolume = matchableVolume(buys, sells, price)
	return quote, nil
}

// matchableVolume is the smaller of the buy-side quantity willing to
// pay at least price and the sell-side quantity willing to accept at
// most price.
func matchableVolume(buys, sells []*domain.Order, price decimal.Decimal) int64 {
	var buyVolume, sellVolume int64
	for _, o := range buys {
		if o.Price.GreaterThanOrEqual(price) {
			buyVolume += o.Quantity
		}
	}
	for _, o := range sells {
		if o.Price.LessThanOrEqual(price) {
			sellVolume += o.Quantity
		}
	}
	if sellVolume < buyVolume {
		return sellVolume
	}
	return buyVolume
}
