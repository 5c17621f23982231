package crm

import (
	"errors"
	"time"
)

// ErrProfileNotFound is returned when no customer exists for a phone number.
var ErrProfileNotFound = errors.New("crm: profile not found")

// Profile is one row of the customer directory.
type Profile struct {
	Phone            string
	Name             string
	Email            string
	EventType        string
	Venue            string
	EventDate        *time.Time
	LastPaymentCents *int64
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileUpdate carries a partial update. Nil fields leave the stored value
// alone; notes append rather than overwrite so the row accumulates history.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	EventType    *string
	Venue        *string
	EventDate    *time.Time
	PaymentCents *int64
	Note         *string
}
