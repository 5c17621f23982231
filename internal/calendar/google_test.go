package calendar

import (
	"context"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

func TestNewGoogleProviderDisabledWithoutCredentials(t *testing.T) {
	p, err := NewGoogleProvider(context.Background(), GoogleConfig{CalendarID: "primary"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil provider when no credentials are configured")
	}
}

func TestConvertEvents(t *testing.T) {
	items := []*gcal.Event{
		{
			Id:      "evt1",
			Summary: "CONFIRMED - Wedding - The Vault - Sarah Johnson",
			Start:   &gcal.EventDateTime{DateTime: "2026-06-13T17:00:00-04:00"},
			End:     &gcal.EventDateTime{DateTime: "2026-06-13T23:00:00-04:00"},
		},
		nil,
		{
			Id:      "evt2",
			Summary: "Closed for the holiday",
			Start:   &gcal.EventDateTime{Date: "2026-07-04"},
			End:     &gcal.EventDateTime{Date: "2026-07-05"},
		},
	}

	events := convertEvents(items)
	if len(events) != 2 {
		t.Fatalf("expected nil items skipped, got %d events", len(events))
	}

	if events[0].ID != "evt1" {
		t.Fatalf("expected evt1, got %s", events[0].ID)
	}
	if _, off := events[0].Start.Zone(); off != -4*3600 {
		t.Fatalf("expected parsed start to keep -04:00 offset, got %d", off)
	}
	if span := events[0].End.Sub(events[0].Start); span != 6*time.Hour {
		t.Fatalf("expected six hour span, got %s", span)
	}

	if events[1].Start.IsZero() {
		t.Fatal("expected all-day event date to parse")
	}
	if events[1].Start.Format("2006-01-02") != "2026-07-04" {
		t.Fatalf("expected July 4th all-day block, got %v", events[1].Start)
	}
}
