package venues

import (
	"strings"
	"time"
)

// Venue describes one of the event spaces on the shared calendar.
type Venue struct {
	Key      string
	Name     string
	City     string
	Address  string
	Capacity int
}

// Pricing constants, in cents. Venue rates come from the published rate card;
// catering and staffing rates are the house defaults quoted on calls.
const (
	SecurityGuardRateCents = 3500 // per hour, required for all events

	CateringPerGuestCents      = 5500
	SalmonUpgradePerGuestCents = 1200
	ChildPlateCents            = 2500
)

const (
	KeyVault     = "vault"
	KeyLiberty   = "liberty"
	KeyFrankford = "frankford"
)

var catalog = []Venue{
	{
		Key:      KeyVault,
		Name:     "The Vault",
		City:     "Burlington, NJ",
		Address:  "120 High St, Burlington, NJ 08016",
		Capacity: 250,
	},
	{
		Key:      KeyLiberty,
		Name:     "Liberty Palace",
		City:     "Franklin Mills, Philadelphia",
		Address:  "1749 Franklin Mills Cir, Philadelphia, PA 19154",
		Capacity: 210,
	},
	{
		Key:      KeyFrankford,
		Name:     "Frankford Ave",
		City:     "Philadelphia",
		Address:  "4500 Frankford Ave, Philadelphia, PA 19124",
		Capacity: 110,
	},
}

// All returns the venue catalog.
func All() []Venue {
	out := make([]Venue, len(catalog))
	copy(out, catalog)
	return out
}

// Resolve matches a free-text venue mention against the catalog. The match is
// a case-insensitive substring check in both directions, so "the vault
// ballroom", "Vault", and "liberty" all resolve.
func Resolve(name string) (Venue, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Venue{}, false
	}
	for _, v := range catalog {
		haystack := strings.ToLower(v.Name)
		if strings.Contains(needle, haystack) || strings.Contains(haystack, needle) || strings.Contains(needle, v.Key) {
			return v, true
		}
	}
	return Venue{}, false
}

// BasePriceCents returns the venue rental rate for an event starting at the
// given time, before any Early Bird discount.
func BasePriceCents(v Venue, start time.Time) int64 {
	switch v.Key {
	case KeyVault:
		if start.Weekday() == time.Saturday {
			return 379500
		}
		return 250000
	case KeyLiberty:
		return 300000
	case KeyFrankford:
		return 100000
	default:
		return 0
	}
}

// EarlyBirdEligible reports whether the Early Bird special applies: events at
// The Vault or Liberty Palace starting between 9 AM and before 4 PM local
// time get 50% off the venue rental.
func EarlyBirdEligible(v Venue, start time.Time) bool {
	if v.Key != KeyVault && v.Key != KeyLiberty {
		return false
	}
	h := start.Hour()
	return h >= 9 && h < 16
}
