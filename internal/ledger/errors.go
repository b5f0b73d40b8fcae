package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrStockUnavailable  = errors.New("stock unavailable")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StockUnavailableError names the product size that cannot cover a request.
// It matches ErrStockUnavailable.
type StockUnavailableError struct {
	ProductID   string
	ProductName string
	Size        string
	Requested   int
	Available   int
}

func (e *StockUnavailableError) Error() string {
	return fmt.Sprintf("%s: product %s (%s) size %s: requested %d, available %d",
		ErrStockUnavailable, e.ProductID, e.ProductName, e.Size, e.Requested, e.Available)
}

func (e *StockUnavailableError) Is(target error) bool {
	return target == ErrStockUnavailable
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
