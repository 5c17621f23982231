// Package payments charges deposits taken over the phone. The caller reads
// card details to the agent, which charges them in one shot: no checkout
// page, no redirect.
package payments

import (
	"context"
	"errors"
)

// ErrDeclined is returned when the card issuer refuses the charge.
var ErrDeclined = errors.New("payments: card declined")

// Card holds the details collected on the call.
type Card struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
	ZIP      string
}

// Metadata travels with the charge for reconciliation in the provider
// dashboard.
type Metadata struct {
	CustomerName string
	Phone        string
	EventType    string
	Venue        string
	BookingID    string
}

// Result describes a settled charge.
type Result struct {
	IntentID    string
	AmountCents int64
	Status      string
}

// Gateway charges a card immediately.
type Gateway interface {
	ConfirmPayment(ctx context.Context, amountCents int64, card Card, meta Metadata) (*Result, error)
}
