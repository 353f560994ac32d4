package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a single trading intent for one stock.
// Quantity and Price are validated at construction; Status only ever
// moves forward (PENDING -> EXECUTED or PENDING -> CANCELLED).
type Order struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"index" json:"user_id"`
	StockID    string          `gorm:"index" json:"stock_id"`
	Side       string          `json:"side"` // "BUY", "SELL"
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric" json:"price"`
	Status     string          `gorm:"index" json:"status"` // "PENDING", "EXECUTED", "CANCELLED"
	CreatedAt  time.Time       `json:"created_at"`
	ExecutedAt *time.Time      `json:"executed_at,omitempty"`
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderStatusPending   = "PENDING"
	OrderStatusExecuted  = "EXECUTED"
	OrderStatusCancelled = "CANCELLED"
)

// orderFee is the flat per-order charge used for cost estimation.
var orderFee = decimal.NewFromInt(1)

// NewOrder creates a PENDING order. It fails fast on non-positive
// quantity or price so an invalid order can never exist.
func NewOrder(id, userID, stockID, side string, quantity int64, price decimal.Decimal) (*Order, error) {
	if side != SideBuy && side != SideSell {
		return nil, &ValidationError{Field: "side", Err: ErrInvalidSide}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Err: ErrNonPositiveQuantity}
	}
	if !price.IsPositive() {
		return nil, &ValidationError{Field: "price", Err: ErrNonPositivePrice}
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		StockID:   stockID,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Status:    OrderStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// IsPending reports whether the order can still transition.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// Execute marks the order EXECUTED and stamps the execution instant.
// Only a PENDING order can be executed.
func (o *Order) Execute(at time.Time) error {
	if !o.IsPending() {
		return &StateError{Op: "execute", Status: o.Status}
	}
	o.Status = OrderStatusExecuted
	o.ExecutedAt = &at
	return nil
}

// Cancel marks the order CANCELLED. Only a PENDING order can be cancelled.
func (o *Order) Cancel() error {
	if !o.IsPending() {
		return &StateError{Op: "cancel", Status: o.Status}
	}
	o.Status = OrderStatusCancelled
	return nil
}

// TotalCost estimates quantity*price plus the flat order fee.
// This is a display helper; settlement always uses the execution price.
func (o *Order) TotalCost() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity)).Add(orderFee)
}
