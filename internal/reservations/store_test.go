package reservations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/calendar"
)

type fakeProvider struct {
	created []calendar.Event
	patches map[string]calendar.Patch
	search  []calendar.Event
	nextID  string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{patches: map[string]calendar.Patch{}, nextID: "evt-1"}
}

func (f *fakeProvider) ListOverlapping(ctx context.Context, w calendar.Window) ([]calendar.Event, error) {
	return nil, nil
}

func (f *fakeProvider) Create(ctx context.Context, ev calendar.Event) (string, error) {
	f.created = append(f.created, ev)
	return f.nextID, nil
}

func (f *fakeProvider) Patch(ctx context.Context, id string, p calendar.Patch) error {
	f.patches[id] = p
	return nil
}

func (f *fakeProvider) SearchText(ctx context.Context, q string, timeMin time.Time) ([]calendar.Event, error) {
	return f.search, nil
}

func TestTitleRoundTrip(t *testing.T) {
	title := Title(booking.StatusPenciled, "Wedding", "The Vault", "Sarah Johnson")
	if title != "PENCILED - Wedding - The Vault - Sarah Johnson" {
		t.Fatalf("unexpected title %q", title)
	}

	status, eventType, venue, customer, ok := ParseTitle(title)
	if !ok {
		t.Fatal("expected reservation title to parse")
	}
	if status != booking.StatusPenciled || eventType != "Wedding" || venue != "The Vault" || customer != "Sarah Johnson" {
		t.Fatalf("round trip mismatch: %s %s %s %s", status, eventType, venue, customer)
	}
}

func TestParseTitleHyphenatedCustomer(t *testing.T) {
	title := Title(booking.StatusConfirmed, "Sweet 16", "Liberty Palace", "Ana Maria - Lopez")
	_, _, _, customer, ok := ParseTitle(title)
	if !ok || customer != "Ana Maria - Lopez" {
		t.Fatalf("expected customer segments re-joined, got %q (ok=%v)", customer, ok)
	}
}

func TestParseTitleRejectsNonReservations(t *testing.T) {
	for _, summary := range []string{
		"Closed for the holiday",
		"Staff meeting - conference room",
		"CANCELLED - Wedding - The Vault - Someone",
	} {
		if _, _, _, _, ok := ParseTitle(summary); ok {
			t.Fatalf("expected %q to be rejected", summary)
		}
	}
}

func TestCreateEncodesMetadata(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	edt := time.FixedZone("EDT", -4*3600)

	b := &booking.Booking{
		CustomerName:   "Sarah Johnson",
		Phone:          "+12675550123",
		Email:          "sarah@example.com",
		Venue:          "The Vault",
		EventType:      "Wedding",
		GuestCount:     120,
		Status:         booking.StatusPenciled,
		EffectiveStart: time.Date(2026, 6, 13, 17, 0, 0, 0, edt),
		EffectiveEnd:   time.Date(2026, 6, 13, 23, 0, 0, 0, edt),
		AddOns:         []booking.AddOn{{Name: "DJ package", FlatCents: 50000}},
		Notes:          "gold and ivory decor",
	}

	id, err := store.Create(context.Background(), b)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != "evt-1" || b.ID != "evt-1" {
		t.Fatalf("expected provider id threaded back, got %q / %q", id, b.ID)
	}

	ev := provider.created[0]
	if ev.Summary != "PENCILED - Wedding - The Vault - Sarah Johnson" {
		t.Fatalf("unexpected summary %q", ev.Summary)
	}
	if !strings.Contains(ev.Location, "Burlington") {
		t.Fatalf("expected venue address resolved, got %q", ev.Location)
	}
	for _, want := range []string{"Phone: +12675550123", "Email: sarah@example.com", "Guests: 120", "Add-ons: DJ package", "Notes: gold and ivory decor"} {
		if !strings.Contains(ev.Description, want) {
			t.Fatalf("description missing %q:\n%s", want, ev.Description)
		}
	}
}

func TestDescriptionRoundTripsAddOns(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	b := &booking.Booking{
		CustomerName:   "Sarah Johnson",
		Phone:          "+15551234567",
		Venue:          "The Vault",
		EventType:      "Wedding",
		GuestCount:     80,
		Status:         booking.StatusPenciled,
		EffectiveStart: time.Date(2026, 6, 13, 17, 0, 0, 0, edt),
		EffectiveEnd:   time.Date(2026, 6, 14, 0, 0, 0, 0, edt),
		AddOns: []booking.AddOn{
			{Name: "Security guard (7 hours)", FlatCents: 24500},
			{Name: "Catering package", PerGuestCents: 5500},
			{Name: "Children's plates (2)", FlatCents: 5000},
		},
	}

	desc := RenderDescription(b)
	if !strings.Contains(desc, "Add-ons: Security guard (7 hours) ($245.00); Catering package ($55.00/guest); Children's plates (2) ($50.00)") {
		t.Fatalf("add-ons not serialized with amounts:\n%s", desc)
	}

	fields := ParseDescription(desc)
	if len(fields.AddOns) != 3 {
		t.Fatalf("expected 3 add-ons back, got %#v", fields.AddOns)
	}
	for i, want := range b.AddOns {
		if fields.AddOns[i] != want {
			t.Fatalf("add-on %d: got %#v, want %#v", i, fields.AddOns[i], want)
		}
	}
}

func TestParseDescriptionWithoutAddOnsLine(t *testing.T) {
	fields := ParseDescription("Phone: +15551234567\nGuests: 80\n")
	if fields.Phone != "+15551234567" || fields.Guests != 80 {
		t.Fatalf("basic fields lost: %#v", fields)
	}
	if len(fields.AddOns) != 0 {
		t.Fatalf("unexpected add-ons: %#v", fields.AddOns)
	}
}

func TestFindPenciledFirstMatchByStart(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	provider := newFakeProvider()
	// Provider returns results ordered by start time; the store takes the
	// first penciled match.
	provider.search = []calendar.Event{
		{
			ID:      "evt-other",
			Summary: "CONFIRMED - Birthday - Liberty Palace - Sarah Johnson",
			Start:   time.Date(2026, 5, 1, 18, 0, 0, 0, edt),
		},
		{
			ID:      "evt-early",
			Summary: "PENCILED - Wedding - The Vault - Sarah Johnson",
			Start:   time.Date(2026, 6, 13, 17, 0, 0, 0, edt),
		},
		{
			ID:      "evt-late",
			Summary: "PENCILED - Wedding - The Vault - Sarah Johnson",
			Start:   time.Date(2026, 9, 5, 17, 0, 0, 0, edt),
		},
	}
	store := NewStore(provider, nil)

	ev, err := store.FindPenciled(context.Background(), "Sarah Johnson", "", time.Now())
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if ev == nil || ev.ID != "evt-early" {
		t.Fatalf("expected earliest penciled match, got %+v", ev)
	}
}

func TestFindPenciledByID(t *testing.T) {
	provider := newFakeProvider()
	provider.search = []calendar.Event{
		{ID: "evt-early", Summary: "PENCILED - Wedding - The Vault - Sarah Johnson"},
		{ID: "evt-late", Summary: "PENCILED - Wedding - The Vault - Sarah Johnson"},
	}
	store := NewStore(provider, nil)

	ev, err := store.FindPenciled(context.Background(), "Sarah Johnson", "evt-late", time.Now())
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if ev == nil || ev.ID != "evt-late" {
		t.Fatalf("expected exact id match, got %+v", ev)
	}
}

func TestFindPenciledNoMatch(t *testing.T) {
	provider := newFakeProvider()
	provider.search = []calendar.Event{
		{ID: "evt-1", Summary: "CONFIRMED - Wedding - The Vault - Sarah Johnson"},
	}
	store := NewStore(provider, nil)

	ev, err := store.FindPenciled(context.Background(), "Sarah Johnson", "", time.Now())
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if ev != nil {
		t.Fatalf("expected no penciled match, got %+v", ev)
	}
}

func TestSetStatusRewritesTitleAndAppends(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	ev := &calendar.Event{
		ID:          "evt-1",
		Summary:     "PENCILED - Wedding - The Vault - Sarah Johnson",
		Description: "Phone: +12675550123",
	}

	entry := booking.AuditEntry{
		Kind:           booking.AuditPayment,
		At:             time.Date(2026, 6, 1, 15, 4, 0, 0, time.UTC),
		AmountCents:    189750,
		ConfirmationID: "NM-AB12CD34",
	}
	if err := store.SetStatus(context.Background(), ev, booking.StatusConfirmed, entry); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	patch := provider.patches["evt-1"]
	if patch.Summary == nil || *patch.Summary != "CONFIRMED - Wedding - The Vault - Sarah Johnson" {
		t.Fatalf("expected rewritten title, got %v", patch.Summary)
	}
	if patch.Description == nil {
		t.Fatal("expected description patch")
	}
	desc := *patch.Description
	if !strings.Contains(desc, "Phone: +12675550123") {
		t.Fatalf("prior description content must be preserved:\n%s", desc)
	}
	if !strings.Contains(desc, "Payment received: $1,897.50 (confirmation NM-AB12CD34)") {
		t.Fatalf("expected payment audit line appended:\n%s", desc)
	}
}

func TestMovePreservesDescriptionHistory(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	edt := time.FixedZone("EDT", -4*3600)
	ev := &calendar.Event{
		ID:          "evt-1",
		Summary:     "CONFIRMED - Wedding - The Vault - Sarah Johnson",
		Description: "Phone: +12675550123\n--- History ---\n[Jun 1, 2026 3:04 PM] Payment received: $1,897.50",
	}

	newStart := time.Date(2026, 7, 11, 17, 0, 0, 0, edt)
	newEnd := time.Date(2026, 7, 11, 23, 0, 0, 0, edt)
	entry := booking.AuditEntry{
		Kind: booking.AuditReschedule,
		At:   time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC),
		Note: "moved from Saturday, June 13th to Saturday, July 11th",
	}
	if err := store.Move(context.Background(), ev, newStart, newEnd, entry); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	patch := provider.patches["evt-1"]
	if patch.Start == nil || !patch.Start.Equal(newStart) {
		t.Fatalf("expected start moved, got %v", patch.Start)
	}
	if patch.Summary != nil {
		t.Fatal("move must not touch the title (status preserved)")
	}
	desc := *patch.Description
	if !strings.Contains(desc, "Payment received: $1,897.50") {
		t.Fatalf("payment history must survive reschedule:\n%s", desc)
	}
	if !strings.Contains(desc, "Rescheduled: moved from Saturday, June 13th") {
		t.Fatalf("expected reschedule audit line:\n%s", desc)
	}
}
