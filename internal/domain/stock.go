package domain

import (
	"strings"
	"time"
)

// maxSymbolLen bounds ticker symbols (exchange symbols top out well below this).
const maxSymbolLen = 10

// Stock is a tradable instrument. Orders can only be placed against a
// stock whose IsAvailable flag is set.
type Stock struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Symbol      string    `gorm:"uniqueIndex" json:"symbol"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name"`
	IsAvailable bool      `gorm:"index" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewStock creates a stock with a validated symbol.
func NewStock(id, symbol, name, companyName string, isAvailable bool) (*Stock, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, &ValidationError{Field: "symbol", Err: ErrEmptySymbol}
	}
	if len(symbol) > maxSymbolLen {
		return nil, &ValidationError{Field: "symbol", Err: ErrSymbolTooLong}
	}
	return &Stock{
		ID:          id,
		Symbol:      symbol,
		Name:        name,
		CompanyName: companyName,
		IsAvailable: isAvailable,
		CreatedAt:   time.Now(),
	}, nil
}

// MakeAvailable opens the stock for trading.
func (s *Stock) MakeAvailable() {
	s.IsAvailable = true
}

// MakeUnavailable suspends the stock from trading.
func (s *Stock) MakeUnavailable() {
	s.IsAvailable = false
}
