package sale

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for ledger operations.
var (
	// ErrNotFound is returned when an operation targets a sale id that does
	// not exist in the store.
	ErrNotFound = errors.New("sale not found")

	// ErrEmptyItems rejects a creation request with no line items.
	ErrEmptyItems = errors.New("sale requires at least one item")
)

// InvalidQuantityError indicates a line item with a quantity below 1.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %d must be at least 1", e.Quantity, e.ProductID)
}

// ProductNotFoundError indicates a line item referencing a product that does
// not resolve in the catalog.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError indicates a line item quantity exceeding the
// catalog's current stock for the product.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// CustomerNotFoundError indicates a creation request referencing a customer
// that does not resolve in the registry.
type CustomerNotFoundError struct {
	CustomerID int64
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %d not found", e.CustomerID)
}

// IsValidation reports whether err is one of the creation validation errors.
// Validation errors are always raised before any mutation.
func IsValidation(err error) bool {
	if errors.Is(err, ErrEmptyItems) {
		return true
	}
	var (
		iq *InvalidQuantityError
		pn *ProductNotFoundError
		is *InsufficientStockError
		cn *CustomerNotFoundError
	)
	return errors.As(err, &iq) || errors.As(err, &pn) || errors.As(err, &is) || errors.As(err, &cn)
}
