package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientStockError carries enough detail for the POS frontend to tell
// the cashier which product ran out. For bundles the product named here is
// the component that fell short, not the bundle itself.
type InsufficientStockError struct {
	Product   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.Product, e.Requested, e.Available)
}

// InvalidReferenceError signals a request that names an entity, status or
// relation that does not exist or cannot be used.
type InvalidReferenceError struct {
	Msg string
}

func (e *InvalidReferenceError) Error() string { return e.Msg }

func invalidRef(format string, args ...interface{}) error {
	return &InvalidReferenceError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantViolationError means an internal consistency rule broke — a
// programming error, never bad user input. It always aborts the enclosing
// transaction.
type InvariantViolationError struct {
	Msg string
}

func (e *InvariantViolationError) Error() string { return e.Msg }

// TenantMismatchError is returned when a request reaches across tenants,
// e.g. bundling a component owned by someone else.
type TenantMismatchError struct {
	Msg string
}

func (e *TenantMismatchError) Error() string { return e.Msg }
