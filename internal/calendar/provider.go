// Package calendar defines the calendar provider contract the booking engine
// depends on, plus the Google Calendar implementation used in production.
package calendar

import (
	"context"
	"time"
)

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Event is a calendar entry. The backing store has no structured booking
// schema, so all booking metadata lives in Summary and Description.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Patch describes a partial update to an event. Nil fields are left as is.
type Patch struct {
	Summary     *string
	Description *string
	Start       *time.Time
	End         *time.Time
}

// Provider is the calendar collaborator contract. Implementations make
// blocking network calls with no automatic retry; errors surface immediately.
type Provider interface {
	// ListOverlapping returns entries overlapping the window, ordered by
	// start time.
	ListOverlapping(ctx context.Context, w Window) ([]Event, error)
	// Create inserts an entry and returns the provider's event ID.
	Create(ctx context.Context, ev Event) (string, error)
	// Patch applies a partial update to an existing entry.
	Patch(ctx context.Context, id string, p Patch) error
	// SearchText finds entries whose title or description matches the query,
	// starting no earlier than timeMin, ordered by start time.
	SearchText(ctx context.Context, query string, timeMin time.Time) ([]Event, error)
}
