// Package contract prices bookings and produces the written agreement that
// goes out to the customer and the office.
package contract

import (
	"fmt"
	"math"
	"time"

	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/venues"
)

// LineItem is one priced row of a quote. Discounts carry negative amounts.
type LineItem struct {
	Label       string
	AmountCents int64
}

// Quote is the full price breakdown for a booking.
type Quote struct {
	Items           []LineItem
	TotalCents      int64
	DepositDueCents int64
	PaidCents       int64
	BalanceCents    int64
}

// BuildQuote prices a booking from the venue catalog, its add-ons, and its
// recorded payments. The deposit requirement is half the total, rounded up
// on odd cents.
func BuildQuote(b *booking.Booking) (Quote, error) {
	v, ok := venues.Resolve(b.Venue)
	if !ok {
		return Quote{}, fmt.Errorf("contract: unknown venue %q", b.Venue)
	}

	start := b.RawStart()
	base := venues.BasePriceCents(v, start)

	q := Quote{}
	q.Items = append(q.Items, LineItem{
		Label:       fmt.Sprintf("%s venue rental", v.Name),
		AmountCents: base,
	})
	if venues.EarlyBirdEligible(v, start) {
		q.Items = append(q.Items, LineItem{
			Label:       "Early Bird discount (50% off venue rental)",
			AmountCents: -base / 2,
		})
	}

	for _, a := range b.AddOns {
		amount := a.FlatCents + a.PerGuestCents*int64(b.GuestCount)
		q.Items = append(q.Items, LineItem{Label: a.Name, AmountCents: amount})
	}

	for _, item := range q.Items {
		q.TotalCents += item.AmountCents
	}
	q.DepositDueCents = (q.TotalCents + 1) / 2
	q.PaidCents = b.PaidToDateCents()
	q.BalanceCents = q.TotalCents - q.PaidCents
	return q, nil
}

// SecurityGuardAddOn builds the guard line for an event, billed per started
// hour over the full blocked window including setup and cleanup.
func SecurityGuardAddOn(effStart, effEnd time.Time) booking.AddOn {
	hours := int64(math.Ceil(effEnd.Sub(effStart).Hours()))
	if hours < 1 {
		hours = 1
	}
	return booking.AddOn{
		Name:      fmt.Sprintf("Security guard (%d hours)", hours),
		FlatCents: hours * venues.SecurityGuardRateCents,
	}
}

// CateringAddOn builds the standard per-guest catering line.
func CateringAddOn() booking.AddOn {
	return booking.AddOn{
		Name:          "Catering package",
		PerGuestCents: venues.CateringPerGuestCents,
	}
}

// SalmonUpgradeAddOn builds the per-guest salmon entree upgrade line.
func SalmonUpgradeAddOn() booking.AddOn {
	return booking.AddOn{
		Name:          "Salmon entree upgrade",
		PerGuestCents: venues.SalmonUpgradePerGuestCents,
	}
}

// ChildPlateAddOn builds the flat children's plate line.
func ChildPlateAddOn(count int) booking.AddOn {
	return booking.AddOn{
		Name:      fmt.Sprintf("Children's plates (%d)", count),
		FlatCents: int64(count) * venues.ChildPlateCents,
	}
}
