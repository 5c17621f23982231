package booking

import "time"

// EventBuffer is the mandatory setup/cleanup time blocked on either side of
// an event's active window. Tours carry no buffer.
const EventBuffer = time.Hour

// EffectiveWindow maps a requested window to the window actually occupied on
// the calendar. It is pure and offset-preserving: the returned times carry
// the same location as the inputs.
//
// Callers must pass the raw requested window, never an already-buffered one;
// the effective window is computed exactly once, at create or reschedule, and
// stored on the booking as authoritative.
func EffectiveWindow(requestedStart, requestedEnd time.Time, isEvent bool) (time.Time, time.Time) {
	if !isEvent {
		return requestedStart, requestedEnd
	}
	return requestedStart.Add(-EventBuffer), requestedEnd.Add(EventBuffer)
}
