// Package reservations adapts calendar entries into booking records. The
// backing store has no columns for booking fields, so status rides in the
// entry title and everything else is encoded into the free-text description
// block. Title format: "STATUS - EventType - Venue - CustomerName".
package reservations

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/calendar"
	"github.com/natashamaes/venue-concierge/internal/venues"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

const (
	titleSeparator  = " - "
	historyHeader   = "--- History ---"
	auditTimeLayout = "Jan 2, 2006 3:04 PM"
)

// Store reads and writes reservations through the calendar provider.
type Store struct {
	provider calendar.Provider
	logger   *logging.Logger
}

// NewStore creates a reservation store over the given provider.
func NewStore(provider calendar.Provider, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{provider: provider, logger: logger}
}

// Title renders the display title for a reservation.
func Title(status booking.Status, eventType, venue, customer string) string {
	return strings.Join([]string{status.TitlePrefix(), eventType, venue, customer}, titleSeparator)
}

// ParseTitle decodes a reservation title. Customer names containing the
// separator are re-joined; anything without a known status prefix is not a
// reservation (holidays, staff blocks) and reports ok=false.
func ParseTitle(summary string) (status booking.Status, eventType, venue, customer string, ok bool) {
	parts := strings.Split(summary, titleSeparator)
	if len(parts) < 4 {
		return "", "", "", "", false
	}
	status, ok = booking.ParseStatus(strings.TrimSpace(parts[0]))
	if !ok {
		return "", "", "", "", false
	}
	eventType = strings.TrimSpace(parts[1])
	venue = strings.TrimSpace(parts[2])
	customer = strings.TrimSpace(strings.Join(parts[3:], titleSeparator))
	return status, eventType, venue, customer, true
}

// RenderDescription builds the initial free-text block for a new reservation.
func RenderDescription(b *booking.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Phone: %s\n", b.Phone)
	if b.Email != "" {
		fmt.Fprintf(&sb, "Email: %s\n", b.Email)
	}
	if b.GuestCount > 0 {
		fmt.Fprintf(&sb, "Guests: %d\n", b.GuestCount)
	}
	if len(b.AddOns) > 0 {
		tokens := make([]string, 0, len(b.AddOns))
		for _, a := range b.AddOns {
			tokens = append(tokens, addOnToken(a))
		}
		fmt.Fprintf(&sb, "Add-ons: %s\n", strings.Join(tokens, addOnSeparator))
	}
	if b.Notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", b.Notes)
	}
	if len(b.Audit) > 0 {
		sb.WriteString(historyHeader)
		sb.WriteString("\n")
		for _, entry := range b.Audit {
			sb.WriteString(AuditLine(entry))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// DescriptionFields holds the metadata parsed back out of a reservation's
// description block.
type DescriptionFields struct {
	Phone  string
	Email  string
	Guests int
	AddOns []booking.AddOn
	Notes  string
}

// ParseDescription reads the labeled lines written by RenderDescription.
// Unrecognized lines and the history section are ignored.
func ParseDescription(description string) DescriptionFields {
	var f DescriptionFields
	for _, line := range strings.Split(description, "\n") {
		if strings.HasPrefix(line, historyHeader) {
			break
		}
		switch {
		case strings.HasPrefix(line, "Phone: "):
			f.Phone = strings.TrimPrefix(line, "Phone: ")
		case strings.HasPrefix(line, "Email: "):
			f.Email = strings.TrimPrefix(line, "Email: ")
		case strings.HasPrefix(line, "Guests: "):
			fmt.Sscanf(strings.TrimPrefix(line, "Guests: "), "%d", &f.Guests)
		case strings.HasPrefix(line, "Add-ons: "):
			for _, token := range strings.Split(strings.TrimPrefix(line, "Add-ons: "), addOnSeparator) {
				if a, ok := parseAddOnToken(token); ok {
					f.AddOns = append(f.AddOns, a)
				}
			}
		case strings.HasPrefix(line, "Notes: "):
			f.Notes = strings.TrimPrefix(line, "Notes: ")
		}
	}
	return f
}

// Amounts travel with the add-on so a booking rebuilt from its calendar
// entry prices exactly what was quoted. Dollar amounts contain commas, so
// tokens are joined with a semicolon.
const addOnSeparator = "; "

func addOnToken(a booking.AddOn) string {
	if a.PerGuestCents != 0 {
		return fmt.Sprintf("%s (%s/guest)", a.Name, booking.FormatUSD(a.PerGuestCents))
	}
	return fmt.Sprintf("%s (%s)", a.Name, booking.FormatUSD(a.FlatCents))
}

func parseAddOnToken(token string) (booking.AddOn, bool) {
	token = strings.TrimSpace(token)
	open := strings.LastIndex(token, "(")
	if open < 1 || !strings.HasSuffix(token, ")") {
		return booking.AddOn{}, false
	}
	name := strings.TrimSpace(token[:open])
	amount := strings.TrimSuffix(token[open+1:], ")")
	perGuest := strings.HasSuffix(amount, "/guest")
	amount = strings.TrimSuffix(amount, "/guest")
	cents, ok := parseUSD(amount)
	if !ok || name == "" {
		return booking.AddOn{}, false
	}
	if perGuest {
		return booking.AddOn{Name: name, PerGuestCents: cents}, true
	}
	return booking.AddOn{Name: name, FlatCents: cents}, true
}

func parseUSD(s string) (int64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 {
		return 0, false
	}
	var cents int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac[:2], 10, 64)
		if err != nil {
			return 0, false
		}
	}
	return dollars*100 + cents, true
}

// AuditLine renders one typed audit entry as a description line.
func AuditLine(entry booking.AuditEntry) string {
	ts := entry.At.Format(auditTimeLayout)
	switch entry.Kind {
	case booking.AuditPayment:
		line := fmt.Sprintf("[%s] Payment received: %s", ts, booking.FormatUSD(entry.AmountCents))
		if entry.ConfirmationID != "" {
			line += fmt.Sprintf(" (confirmation %s)", entry.ConfirmationID)
		}
		if entry.Note != "" && !strings.HasPrefix(entry.Note, "Payment received") {
			line += " - " + entry.Note
		}
		return line
	case booking.AuditReschedule:
		return fmt.Sprintf("[%s] Rescheduled: %s", ts, entry.Note)
	default:
		return fmt.Sprintf("[%s] %s", ts, entry.Note)
	}
}

// Create writes a new reservation entry and returns the provider event ID.
// The venue display address is resolved by substring match against the
// catalog; an unknown venue leaves the location blank.
func (s *Store) Create(ctx context.Context, b *booking.Booking) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("reservations: calendar provider not configured")
	}
	location := ""
	if v, ok := venues.Resolve(b.Venue); ok {
		location = v.Address
	}
	ev := calendar.Event{
		Summary:     Title(b.Status, b.EventType, b.Venue, b.CustomerName),
		Description: RenderDescription(b),
		Location:    location,
		Start:       b.EffectiveStart,
		End:         b.EffectiveEnd,
	}
	id, err := s.provider.Create(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("reservations: create entry: %w", err)
	}
	b.ID = id
	return id, nil
}

// FindPenciled locates the customer's penciled hold among future entries.
// When reservationID is given it selects that exact entry; otherwise this is
// a free-text match and the earliest-starting hit wins. That first-match rule
// is a documented approximation: with no stable key in the caller's hands,
// two future holds under the same name are ambiguous.
func (s *Store) FindPenciled(ctx context.Context, customerName, reservationID string, now time.Time) (*calendar.Event, error) {
	return s.find(ctx, customerName, reservationID, now, func(status booking.Status) bool {
		return status == booking.StatusPenciled
	})
}

// FindByCustomer locates the customer's earliest future reservation of any
// status, subject to the same first-match caveat as FindPenciled.
func (s *Store) FindByCustomer(ctx context.Context, customerName, reservationID string, now time.Time) (*calendar.Event, error) {
	return s.find(ctx, customerName, reservationID, now, func(booking.Status) bool { return true })
}

func (s *Store) find(ctx context.Context, customerName, reservationID string, now time.Time, match func(booking.Status) bool) (*calendar.Event, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("reservations: calendar provider not configured")
	}
	events, err := s.provider.SearchText(ctx, customerName, now)
	if err != nil {
		return nil, fmt.Errorf("reservations: search %q: %w", customerName, err)
	}
	for i := range events {
		ev := events[i]
		status, _, _, customer, ok := ParseTitle(ev.Summary)
		if !ok || !match(status) {
			continue
		}
		if !strings.Contains(strings.ToLower(customer), strings.ToLower(strings.TrimSpace(customerName))) {
			continue
		}
		if reservationID != "" && ev.ID != reservationID {
			continue
		}
		return &ev, nil
	}
	return nil, nil
}

// SetStatus rewrites the entry's status prefix and appends an audit line to
// the description. Prior description content is never removed.
func (s *Store) SetStatus(ctx context.Context, ev *calendar.Event, newStatus booking.Status, entry booking.AuditEntry) error {
	_, eventType, venue, customer, ok := ParseTitle(ev.Summary)
	if !ok {
		return fmt.Errorf("reservations: entry %s has no reservation title", ev.ID)
	}
	summary := Title(newStatus, eventType, venue, customer)
	description := appendLine(ev.Description, AuditLine(entry))
	patch := calendar.Patch{Summary: &summary, Description: &description}
	if err := s.provider.Patch(ctx, ev.ID, patch); err != nil {
		return fmt.Errorf("reservations: update status: %w", err)
	}
	ev.Summary = summary
	ev.Description = description
	s.logger.Info("reservation status updated", "event_id", ev.ID, "status", newStatus)
	return nil
}

// Move changes the entry's window and appends a reschedule audit line.
// Status is preserved.
func (s *Store) Move(ctx context.Context, ev *calendar.Event, newStart, newEnd time.Time, entry booking.AuditEntry) error {
	description := appendLine(ev.Description, AuditLine(entry))
	patch := calendar.Patch{Start: &newStart, End: &newEnd, Description: &description}
	if err := s.provider.Patch(ctx, ev.ID, patch); err != nil {
		return fmt.Errorf("reservations: move entry: %w", err)
	}
	ev.Start = newStart
	ev.End = newEnd
	ev.Description = description
	s.logger.Info("reservation moved", "event_id", ev.ID, "start", newStart, "end", newEnd)
	return nil
}

// AppendAudit adds a history line to an entry without touching its title or
// window.
func (s *Store) AppendAudit(ctx context.Context, ev *calendar.Event, entry booking.AuditEntry) error {
	description := appendLine(ev.Description, AuditLine(entry))
	patch := calendar.Patch{Description: &description}
	if err := s.provider.Patch(ctx, ev.ID, patch); err != nil {
		return fmt.Errorf("reservations: append audit: %w", err)
	}
	ev.Description = description
	return nil
}

// appendLine adds a line to the description block, starting the history
// section if this is the first appended entry.
func appendLine(existing, line string) string {
	existing = strings.TrimRight(existing, "\n")
	if existing == "" {
		return historyHeader + "\n" + line
	}
	if !strings.Contains(existing, historyHeader) {
		return existing + "\n" + historyHeader + "\n" + line
	}
	return existing + "\n" + line
}
