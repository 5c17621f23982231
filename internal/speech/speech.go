// Package speech formats values for a voice channel. Everything returned here
// is meant to be read aloud by the calling agent, so output never contains
// ISO timestamps, identifiers, or URLs.
package speech

import (
	"fmt"
	"time"
)

// Time phrases a timestamp the way a person would say it on the phone:
// "Saturday, June 13th at 6 PM". Minutes are spoken only when non-zero.
func Time(t time.Time) string {
	return fmt.Sprintf("%s at %s", Date(t), Clock(t))
}

// Date phrases the calendar date: "Saturday, June 13th".
func Date(t time.Time) string {
	return fmt.Sprintf("%s, %s %s", t.Weekday(), t.Month(), Ordinal(t.Day()))
}

// Clock phrases the time of day on a 12-hour clock: "6 PM" or "6:30 PM".
func Clock(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	meridiem := "AM"
	if t.Hour() >= 12 {
		meridiem = "PM"
	}
	if t.Minute() == 0 {
		return fmt.Sprintf("%d %s", hour, meridiem)
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), meridiem)
}

// Ordinal renders 1 -> "1st", 22 -> "22nd", 13 -> "13th".
func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// teens always take "th"
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
