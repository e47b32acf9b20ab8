package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate record")
	ErrBadCredentials    = errors.New("invalid username or password")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError names the first cart line that failed stock validation.
type StockError struct {
	ProductID int64
	Name      string // empty when the product no longer exists
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (need %d, have %d)", e.Label(), e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Label is the name shown to shoppers.
func (e *StockError) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("ID %d", e.ProductID)
}
