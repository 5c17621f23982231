package contract

import (
	"fmt"
	"strings"

	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/reservations"
	"github.com/natashamaes/venue-concierge/internal/speech"
	"github.com/natashamaes/venue-concierge/internal/venues"
)

const lineWidth = 62

// Document renders the plain-text agreement for a booking and its quote.
func Document(b *booking.Booking, q Quote) string {
	var sb strings.Builder

	rule := strings.Repeat("=", lineWidth)
	sb.WriteString(rule + "\n")
	sb.WriteString(center("NATASHA MAE'S ENTERPRISES") + "\n")
	sb.WriteString(center("EVENT BOOKING AGREEMENT") + "\n")
	sb.WriteString(rule + "\n\n")

	fmt.Fprintf(&sb, "Customer:   %s\n", b.CustomerName)
	if b.Phone != "" {
		fmt.Fprintf(&sb, "Phone:      %s\n", b.Phone)
	}
	if b.Email != "" {
		fmt.Fprintf(&sb, "Email:      %s\n", b.Email)
	}
	fmt.Fprintf(&sb, "Event:      %s\n", b.EventType)
	if v, ok := venues.Resolve(b.Venue); ok {
		fmt.Fprintf(&sb, "Venue:      %s\n", v.Name)
		fmt.Fprintf(&sb, "Address:    %s\n", v.Address)
	} else if b.Venue != "" {
		fmt.Fprintf(&sb, "Venue:      %s\n", b.Venue)
	}
	fmt.Fprintf(&sb, "Date:       %s\n", speech.Date(b.RawStart()))
	fmt.Fprintf(&sb, "Time:       %s to %s\n", speech.Clock(b.RawStart()), speech.Clock(b.RawEnd()))
	if b.GuestCount > 0 {
		fmt.Fprintf(&sb, "Guests:     %d\n", b.GuestCount)
	}
	fmt.Fprintf(&sb, "Status:     %s\n", b.Status)
	sb.WriteString("\n" + strings.Repeat("-", lineWidth) + "\n")
	sb.WriteString("PRICING\n")
	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")

	for _, item := range q.Items {
		sb.WriteString(row(item.Label, item.AmountCents) + "\n")
	}
	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")
	sb.WriteString(row("TOTAL", q.TotalCents) + "\n")
	sb.WriteString(row("Deposit required (50%)", q.DepositDueCents) + "\n")
	if q.PaidCents > 0 {
		sb.WriteString(row("Paid to date", q.PaidCents) + "\n")
	}
	sb.WriteString(row("Balance due", q.BalanceCents) + "\n")

	if len(b.Audit) > 0 {
		sb.WriteString("\nPAYMENT AND CHANGE HISTORY\n")
		for _, entry := range b.Audit {
			sb.WriteString("  " + reservations.AuditLine(entry) + "\n")
		}
	}

	sb.WriteString("\nTERMS\n")
	sb.WriteString("  A 50% deposit secures your date. The remaining balance is\n")
	sb.WriteString("  due seven days before the event. Deposits are refundable\n")
	sb.WriteString("  up to thirty days before the event date.\n")
	sb.WriteString("\n" + rule + "\n")
	return sb.String()
}

func center(s string) string {
	pad := (lineWidth - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func row(label string, cents int64) string {
	amount := booking.FormatUSD(cents)
	gap := lineWidth - len(label) - len(amount)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + amount
}
