package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
	ErrRestaurantClosed    = errors.New("restaurant is closed")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrPaymentsDisabled    = errors.New("online payments are not configured")
)

// ValidationError carries a human readable reason and matches ErrValidation.
type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string        { return e.Reason }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(reason string) error { return &ValidationError{Reason: reason} }
