package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// ValidationError represents rejected input: non-positive quantities or
// prices, bad symbols, unavailable stocks. Never retriable.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "validation error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ValidationError) IsRetriable() bool {
	return false
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a referenced entity does not exist
// where existence was required.
type NotFoundError struct {
	Entity string // "order", "stock", "portfolio"
	ID     string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found: " + e.ID
}

func (e *NotFoundError) IsRetriable() bool {
	return false
}

// StateError is returned when an operation is not legal in the entity's
// current state, e.g. executing a non-PENDING order or overselling.
type StateError struct {
	Op     string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state for %s: %s", e.Op, e.Status)
}

func (e *StateError) IsRetriable() bool {
	return false
}

// ConflictError is returned when a concurrent transition won the race
// for the same entity. Retriable: the caller may reload and decide again.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return "conflict during " + e.Op + ": " + e.Err.Error()
}

func (e *ConflictError) IsRetriable() bool {
	return true
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidSide is returned when an order side is neither BUY nor SELL.
	ErrInvalidSide = errors.New("side must be BUY or SELL")

	// ErrNonPositiveQuantity is returned when a quantity must be strictly positive.
	ErrNonPositiveQuantity = errors.New("quantity must be greater than 0")

	// ErrNegativeQuantity is returned when a quantity must be non-negative.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrNonPositivePrice is returned when a price must be strictly positive.
	ErrNonPositivePrice = errors.New("price must be greater than 0")

	// ErrNegativePrice is returned when a price must be non-negative.
	ErrNegativePrice = errors.New("price cannot be negative")

	// ErrEmptySymbol is returned when a stock symbol is blank.
	ErrEmptySymbol = errors.New("stock symbol cannot be empty")

	// ErrSymbolTooLong is returned when a stock symbol exceeds the limit.
	ErrSymbolTooLong = errors.New("stock symbol cannot exceed 10 characters")

	// ErrStockUnavailable is returned when placing an order on a suspended stock.
	ErrStockUnavailable = errors.New("stock is not available for trading")

	// ErrStatusChanged is returned when a conditional status update found
	// the order already moved by a concurrent caller.
	ErrStatusChanged = errors.New("order status changed concurrently")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsInvalidState reports whether err is (or wraps) a StateError.
func IsInvalidState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
