// Package availability answers "is this effective window free?" against the
// shared venue calendar. It only reads; it never writes. There is no locking
// between this check and a subsequent reservation write, so two concurrent
// callers can both see a free window. That race is inherent to the design and
// is documented rather than hidden.
package availability

import (
	"context"
	"errors"

	"github.com/natashamaes/venue-concierge/internal/calendar"
	"github.com/natashamaes/venue-concierge/internal/speech"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// ErrProviderUnavailable is returned when no calendar provider is configured.
var ErrProviderUnavailable = errors.New("calendar provider unavailable")

// Status is the outcome of an availability check.
type Status string

const (
	// StatusAvailable means no entries overlap the window.
	StatusAvailable Status = "AVAILABLE"
	// StatusConflict means at least one entry overlaps.
	StatusConflict Status = "CONFLICT"
	// StatusUnavailable means the calendar provider could not be reached.
	// Never reported as available.
	StatusUnavailable Status = "UNAVAILABLE"
)

// Conflict is one overlapping entry, phrased for a speech-oriented caller:
// a display label and a spoken time, never a raw timestamp or event ID.
type Conflict struct {
	Label     string
	HumanTime string
}

// Result is the outcome of a single check.
type Result struct {
	Status    Status
	Conflicts []Conflict
	Err       error
}

// Checker queries the calendar provider for overlaps. It is side-effect
// free: checking twice with no intervening writes yields identical results.
type Checker struct {
	provider calendar.Provider
	logger   *logging.Logger
}

// NewChecker creates a Checker over the given provider.
func NewChecker(provider calendar.Provider, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Checker{provider: provider, logger: logger}
}

// Check reports whether the effective window is free. excludeID, when
// non-empty, drops that event from consideration so a reservation being
// rescheduled does not block its own move.
func (c *Checker) Check(ctx context.Context, w calendar.Window, excludeID string) Result {
	if c.provider == nil {
		return Result{Status: StatusUnavailable, Err: ErrProviderUnavailable}
	}

	events, err := c.provider.ListOverlapping(ctx, w)
	if err != nil {
		c.logger.Error("availability: calendar query failed", "error", err)
		return Result{Status: StatusUnavailable, Err: err}
	}

	var conflicts []Conflict
	for _, ev := range events {
		if excludeID != "" && ev.ID == excludeID {
			continue
		}
		if !overlaps(ev, w) {
			continue
		}
		label := ev.Summary
		if label == "" {
			label = "Busy"
		}
		conflicts = append(conflicts, Conflict{
			Label:     label,
			HumanTime: speech.Time(ev.Start),
		})
	}

	if len(conflicts) > 0 {
		return Result{Status: StatusConflict, Conflicts: conflicts}
	}
	return Result{Status: StatusAvailable}
}

// overlaps guards against providers that return adjacent entries: an entry
// ending exactly at the window start (or starting at its end) is not a
// conflict.
func overlaps(ev calendar.Event, w calendar.Window) bool {
	if ev.Start.IsZero() || ev.End.IsZero() {
		return true // malformed entry, treat as blocking
	}
	return ev.Start.Before(w.End) && ev.End.After(w.Start)
}
