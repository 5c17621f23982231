package booking

import "errors"

var (
	// ErrInvalidWindow is returned when a requested window is malformed
	// (end not after start, or unparseable times upstream).
	ErrInvalidWindow = errors.New("requested end must be after start")

	// ErrInvalidAmount is returned for zero or negative payment amounts.
	ErrInvalidAmount = errors.New("payment amount must be positive")

	// ErrNoPenciledMatch is returned when confirm finds no penciled
	// reservation for the customer.
	ErrNoPenciledMatch = errors.New("no penciled reservation found for customer")

	// ErrReservationNotFound is returned when a reschedule target cannot
	// be located.
	ErrReservationNotFound = errors.New("reservation not found")
)
