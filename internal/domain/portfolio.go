package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a user's position in one stock under blended-lot
// accounting: a single quantity plus the weighted-average purchase
// price across every buy. Sells reduce quantity only; the average
// price keeps reflecting the cost basis of the remaining shares.
type Portfolio struct {
	UserID           string          `gorm:"primaryKey" json:"user_id"`
	StockID          string          `gorm:"primaryKey" json:"stock_id"`
	Quantity         int64           `json:"quantity"`
	AvgPurchasePrice decimal.Decimal `gorm:"type:numeric" json:"avg_purchase_price"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewPortfolio creates a position. Negative quantity or average price
// is rejected; zero/zero is the valid empty starting point.
func NewPortfolio(userID, stockID string, quantity int64, avgPrice decimal.Decimal) (*Portfolio, error) {
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Err: ErrNegativeQuantity}
	}
	if avgPrice.IsNegative() {
		return nil, &ValidationError{Field: "avg_purchase_price", Err: ErrNegativePrice}
	}
	return &Portfolio{
		UserID:           userID,
		StockID:          stockID,
		Quantity:         quantity,
		AvgPurchasePrice: avgPrice,
	}, nil
}

// AddShares records a buy of quantity shares at price and recomputes
// the weighted-average purchase price over the combined position.
func (p *Portfolio) AddShares(quantity int64, price decimal.Decimal) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Err: ErrNonPositiveQuantity}
	}
	if !price.IsPositive() {
		return &ValidationError{Field: "price", Err: ErrNonPositivePrice}
	}

	held := p.AvgPurchasePrice.Mul(decimal.NewFromInt(p.Quantity))
	bought := price.Mul(decimal.NewFromInt(quantity))
	total := p.Quantity + quantity

	p.AvgPurchasePrice = held.Add(bought).Div(decimal.NewFromInt(total))
	p.Quantity = total
	return nil
}

// RemoveShares records a sell of quantity shares. Selling more than
// held is rejected; the average purchase price is left unchanged.
func (p *Portfolio) RemoveShares(quantity int64) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Err: ErrNonPositiveQuantity}
	}
	if quantity > p.Quantity {
		return &StateError{Op: "remove_shares", Status: "insufficient position"}
	}
	p.Quantity -= quantity
	return nil
}

// IsEmpty reports whether the position is fully closed. An empty
// portfolio is deleted rather than kept as a zero row.
func (p *Portfolio) IsEmpty() bool {
	return p.Quantity == 0
}

// MarketValue returns the position's value at the given current price.
func (p *Portfolio) MarketValue(currentPrice decimal.Decimal) decimal.Decimal {
	return currentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// Profit returns the unrealized gain at the given current price,
// relative to the weighted-average cost basis.
func (p *Portfolio) Profit(currentPrice decimal.Decimal) decimal.Decimal {
	return currentPrice.Sub(p.AvgPurchasePrice).Mul(decimal.NewFromInt(p.Quantity))
}
