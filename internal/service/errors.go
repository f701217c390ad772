package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for conditions that carry no extra data. Handlers map
// these to HTTP status codes; services never wrap them in free-text.
var (
	ErrEmptyOrder          = errors.New("order has no items")
	ErrRegisterNotOpen     = errors.New("no open cash register")
	ErrRegisterAlreadyOpen = errors.New("an open cash register already exists for this operator")
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrOrderNotOpen        = errors.New("order is not open")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotAuthorized       = errors.New("authorization required")
)

// InsufficientStockError is returned when a sale asks for more of a material
// than the inventory aggregator currently reports. Validation stops at the
// first violating item.
type InsufficientStockError struct {
	Material string
	Have     decimal.Decimal
	Need     decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s: have %s, need %s",
		e.Material, e.Have.StringFixed(3), e.Need.StringFixed(3))
}

// InsufficientFundsError is a recoverable condition, not a hard failure:
// the caller is expected to add funds (after the authorization gate) and
// re-attempt settlement. Missing is always Required − Current.
type InsufficientFundsError struct {
	Required decimal.Decimal
	Current  decimal.Decimal
	Missing  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, current %s, missing %s",
		e.Required.StringFixed(2), e.Current.StringFixed(2), e.Missing.StringFixed(2))
}

func insufficientFunds(required, current decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{
		Required: required,
		Current:  current,
		Missing:  required.Sub(current),
	}
}

// SettlementFailedError wraps any failure inside the commit transaction.
// The transaction has been rolled back: the order is still open and no
// ledger entry exists.
type SettlementFailedError struct {
	Err error
}

func (e *SettlementFailedError) Error() string {
	return "settlement failed: " + e.Err.Error()
}

func (e *SettlementFailedError) Unwrap() error { return e.Err }

// StoreUnavailableError signals a transient persistence failure whose
// outcome may be unknown. It must not be retried blindly — the caller has
// to re-query state before re-attempting.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return "store unavailable during " + e.Op + ": " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }
