package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// Repository is the storage surface the synchronizer writes through.
type Repository interface {
	Upsert(ctx context.Context, phone string, upd ProfileUpdate) error
	GetByPhone(ctx context.Context, phone string) (*Profile, error)
}

// Synchronizer mirrors call outcomes into the customer directory. All
// methods are best-effort: a directory outage is logged, never surfaced to
// the caller, so a CRM problem cannot block a booking.
type Synchronizer struct {
	repo   Repository
	logger *logging.Logger
}

// NewSynchronizer creates a synchronizer. A nil repo disables all writes.
func NewSynchronizer(repo Repository, logger *logging.Logger) *Synchronizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Synchronizer{repo: repo, logger: logger}
}

// Enabled reports whether a directory is wired.
func (s *Synchronizer) Enabled() bool {
	return s != nil && s.repo != nil
}

// RecordInquiry captures who called and what they asked about.
func (s *Synchronizer) RecordInquiry(ctx context.Context, rawPhone, name, email, eventType, venue string, eventDate *time.Time) {
	if !s.Enabled() {
		return
	}
	phone := CanonicalPhone(rawPhone)
	if phone == "" {
		s.logger.Debug("crm: skipping inquiry with no usable phone", "name", name)
		return
	}
	upd := ProfileUpdate{
		Name:      optional(name),
		Email:     optional(email),
		EventType: optional(eventType),
		Venue:     optional(venue),
		EventDate: eventDate,
	}
	if err := s.repo.Upsert(ctx, phone, upd); err != nil {
		s.logger.Warn("crm: inquiry sync failed", "error", err, "phone", phone)
	}
}

// RecordPayment captures a received deposit or balance payment against the
// caller's profile, appending a dated note.
func (s *Synchronizer) RecordPayment(ctx context.Context, rawPhone, name string, amountCents int64, confirmationID string, at time.Time) {
	if !s.Enabled() {
		return
	}
	phone := CanonicalPhone(rawPhone)
	if phone == "" {
		s.logger.Debug("crm: skipping payment with no usable phone", "name", name)
		return
	}
	note := fmt.Sprintf("%s: paid %s (%s)", at.Format("2006-01-02"), booking.FormatUSD(amountCents), confirmationID)
	upd := ProfileUpdate{
		Name:         optional(name),
		PaymentCents: &amountCents,
		Note:         &note,
	}
	if err := s.repo.Upsert(ctx, phone, upd); err != nil {
		s.logger.Warn("crm: payment sync failed", "error", err, "phone", phone)
	}
}

// Lookup fetches the caller's profile. Like the write paths it is
// best-effort: a missing row or a directory outage reads as "no history".
func (s *Synchronizer) Lookup(ctx context.Context, rawPhone string) (*Profile, bool) {
	if !s.Enabled() {
		return nil, false
	}
	phone := CanonicalPhone(rawPhone)
	if phone == "" {
		return nil, false
	}
	p, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			s.logger.Warn("crm: lookup failed", "error", err, "phone", phone)
		}
		return nil, false
	}
	return p, true
}

// HistoryLines summarizes a profile for the office staff, one fact per line.
func HistoryLines(p *Profile) []string {
	if p == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("Returning customer: %s", p.Name)}
	if p.Email != "" {
		lines = append(lines, fmt.Sprintf("Email on file: %s", p.Email))
	}
	if p.LastPaymentCents != nil {
		lines = append(lines, fmt.Sprintf("Last payment: %s on %s", booking.FormatUSD(*p.LastPaymentCents), p.UpdatedAt.Format("January 2, 2006")))
	}
	if p.EventType != "" || p.Venue != "" {
		interest := p.EventType
		if interest == "" {
			interest = "an event"
		}
		line := "Previous interest: " + interest
		if p.Venue != "" {
			line += " at " + p.Venue
		}
		if p.EventDate != nil {
			line += " on " + p.EventDate.Format("January 2, 2006")
		}
		lines = append(lines, line)
	}
	if p.Notes != "" {
		lines = append(lines, "Notes: "+p.Notes)
	}
	return lines
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
