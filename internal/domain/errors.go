package domain

import (
	"errors"
	"fmt"
)

// Typed business failures. Every usecase operation returns either a success
// value or one of these; the delivery layer maps them to HTTP status codes.
// Anything else that bubbles up is treated as an internal error.

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports a caller identity that does not match the
// role/address required by the operation.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return "authorization: " + e.Reason }

func Authorizationf(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// StateError reports an operation attempted while the order, carrier leg or
// escrow account is not in a state that permits it.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return "state: " + e.Reason }

func Statef(format string, args ...any) error {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing order, product, profile or case index.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found: " + e.Key }

func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// InsufficientFundsError reports a failed currency ledger debit due to
// insufficient balance or escrow allowance.
type InsufficientFundsError struct {
	Address  string
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: account %s requires %d", e.Address, e.Required)
}

// Classification helpers used by handlers and tests.

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsAuthorization(err error) bool {
	var t *AuthorizationError
	return errors.As(err, &t)
}

func IsState(err error) bool {
	var t *StateError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsInsufficientFunds(err error) bool {
	var t *InsufficientFundsError
	return errors.As(err, &t)
}
