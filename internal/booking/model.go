package booking

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a reservation. It is the source of truth;
// the textual prefix written into the calendar entry title is derived from it.
type Status string

const (
	// StatusTour is a free, unbuffered viewing appointment. Terminal.
	StatusTour Status = "TOUR"
	// StatusPenciled is a tentative hold with no deposit. Not guaranteed.
	StatusPenciled Status = "PENCILED"
	// StatusConfirmed is a reservation backed by a received deposit.
	StatusConfirmed Status = "CONFIRMED"
)

// TitlePrefix is the display tag used in the calendar entry title.
func (s Status) TitlePrefix() string { return string(s) }

// ParseStatus maps a title prefix back to a Status.
func ParseStatus(prefix string) (Status, bool) {
	switch Status(prefix) {
	case StatusTour, StatusPenciled, StatusConfirmed:
		return Status(prefix), true
	}
	return "", false
}

// Payment is one received deposit or balance payment.
type Payment struct {
	AmountCents    int64
	ConfirmationID string
	ReceivedAt     time.Time
}

// AddOn is a priced extra attached to a booking. Exactly one of FlatCents or
// PerGuestCents is non-zero.
type AddOn struct {
	Name          string
	FlatCents     int64
	PerGuestCents int64
}

// AuditKind identifies the type of an audit entry.
type AuditKind string

const (
	AuditPayment    AuditKind = "payment"
	AuditReschedule AuditKind = "reschedule"
)

// AuditEntry is one entry in a booking's ordered history. The free-text
// description block on the calendar entry is rendered from these, never the
// other way around.
type AuditEntry struct {
	Kind           AuditKind
	At             time.Time
	Note           string
	AmountCents    int64
	ConfirmationID string
}

// Booking is the unit of scheduling.
type Booking struct {
	// ID is the calendar provider's event identifier, assigned at creation
	// and threaded through confirm and reschedule calls.
	ID string

	CustomerName string
	Phone        string
	Email        string

	Venue      string
	EventType  string
	GuestCount int

	// RequestedStart/End are the window as given by the caller.
	RequestedStart time.Time
	RequestedEnd   time.Time
	// EffectiveStart/End are the window actually blocked on the calendar,
	// after the setup/cleanup buffer. Authoritative once set.
	EffectiveStart time.Time
	EffectiveEnd   time.Time

	Status Status

	TotalPriceCents int64
	DepositCents    int64
	AddOns          []AddOn
	Payments        []Payment
	Audit           []AuditEntry

	Notes string
}

// IsEvent reports whether the booking carries the setup/cleanup buffer.
// Tours never do.
func (b *Booking) IsEvent() bool { return b.Status != StatusTour }

// RawStart returns the customer-facing start time. Bookings reconstructed
// from stored entries only carry the effective window, so the buffer is
// peeled back off for events.
func (b *Booking) RawStart() time.Time {
	if !b.RequestedStart.IsZero() {
		return b.RequestedStart
	}
	if b.IsEvent() {
		return b.EffectiveStart.Add(EventBuffer)
	}
	return b.EffectiveStart
}

// RawEnd returns the customer-facing end time.
func (b *Booking) RawEnd() time.Time {
	if !b.RequestedEnd.IsZero() {
		return b.RequestedEnd
	}
	if b.IsEvent() {
		return b.EffectiveEnd.Add(-EventBuffer)
	}
	return b.EffectiveEnd
}

// PaidToDateCents sums all recorded payments.
func (b *Booking) PaidToDateCents() int64 {
	var total int64
	for _, p := range b.Payments {
		total += p.AmountCents
	}
	return total
}

// BalanceDueCents is the total package price minus payments received.
func (b *Booking) BalanceDueCents() int64 {
	return b.TotalPriceCents - b.PaidToDateCents()
}

// RecordPayment appends a payment and its audit entry.
func (b *Booking) RecordPayment(p Payment) {
	b.Payments = append(b.Payments, p)
	b.Audit = append(b.Audit, AuditEntry{
		Kind:           AuditPayment,
		At:             p.ReceivedAt,
		AmountCents:    p.AmountCents,
		ConfirmationID: p.ConfirmationID,
		Note:           fmt.Sprintf("Payment received: %s", FormatUSD(p.AmountCents)),
	})
}

// FormatUSD renders cents as a dollar string: 189750 -> "$1,897.50".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := cents / 100
	rem := cents % 100
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(dollars), rem)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
