// Package concierge is the booking state machine. It drives the
// TOUR / PENCILED / CONFIRMED lifecycle on top of the buffer rule, the
// availability checker, and the reservation store.
package concierge

import (
	"context"
	"fmt"
	"time"

	"github.com/natashamaes/venue-concierge/internal/availability"
	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/calendar"
	"github.com/natashamaes/venue-concierge/internal/reservations"
	"github.com/natashamaes/venue-concierge/internal/speech"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// Service coordinates booking lifecycle operations. All collaborators are
// injected; the service holds no provider singletons and no locks. The
// availability read and the reservation write are separate provider calls
// with no transactional isolation between them: two concurrent requests for
// the same window can both observe it free and both book. Closing that race
// would require provider-side support the calendar does not offer.
type Service struct {
	store   *reservations.Store
	checker *availability.Checker
	now     func() time.Time
	logger  *logging.Logger
}

// NewService creates the state machine over its three collaborators.
func NewService(store *reservations.Store, checker *availability.Checker, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:   store,
		checker: checker,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ConflictError reports a window that is already taken, carrying the
// speech-ready conflict list.
type ConflictError struct {
	Conflicts []availability.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("window unavailable: %d conflicting reservation(s)", len(e.Conflicts))
}

// UnavailableError reports that the calendar provider could not be reached.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("calendar service unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// CreateParams describes a new tour, penciled hold, or direct confirmed
// booking. Start and End are the raw requested window; the effective window
// is derived here, exactly once.
type CreateParams struct {
	CustomerName string
	Phone        string
	Email        string
	Venue        string
	EventType    string
	GuestCount   int

	Start   time.Time
	End     time.Time
	IsEvent bool

	Status booking.Status
	AddOns []booking.AddOn
	Notes  string

	TotalPriceCents int64
	DepositCents    int64
}

// CheckWindow applies the buffer rule to a raw request and checks the
// resulting effective window. Read-only.
func (s *Service) CheckWindow(ctx context.Context, start, end time.Time, isEvent bool) (availability.Result, error) {
	if !end.After(start) {
		return availability.Result{}, booking.ErrInvalidWindow
	}
	effStart, effEnd := booking.EffectiveWindow(start, end, isEvent)
	return s.checker.Check(ctx, calendar.Window{Start: effStart, End: effEnd}, ""), nil
}

// Create books a new reservation. Tours are stored with the raw window;
// events are buffered. The availability check always runs before the write;
// see the Service doc for the check-then-write caveat.
func (s *Service) Create(ctx context.Context, p CreateParams) (*booking.Booking, error) {
	if !p.End.After(p.Start) {
		return nil, booking.ErrInvalidWindow
	}
	status := p.Status
	if status == "" {
		status = booking.StatusPenciled
	}

	isEvent := p.IsEvent && status != booking.StatusTour
	effStart, effEnd := booking.EffectiveWindow(p.Start, p.End, isEvent)

	res := s.checker.Check(ctx, calendar.Window{Start: effStart, End: effEnd}, "")
	switch res.Status {
	case availability.StatusUnavailable:
		return nil, &UnavailableError{Err: res.Err}
	case availability.StatusConflict:
		return nil, &ConflictError{Conflicts: res.Conflicts}
	}

	b := &booking.Booking{
		CustomerName:    p.CustomerName,
		Phone:           p.Phone,
		Email:           p.Email,
		Venue:           p.Venue,
		EventType:       p.EventType,
		GuestCount:      p.GuestCount,
		RequestedStart:  p.Start,
		RequestedEnd:    p.End,
		EffectiveStart:  effStart,
		EffectiveEnd:    effEnd,
		Status:          status,
		AddOns:          p.AddOns,
		Notes:           p.Notes,
		TotalPriceCents: p.TotalPriceCents,
		DepositCents:    p.DepositCents,
	}

	if _, err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("reservation created",
		"event_id", b.ID,
		"status", b.Status,
		"customer", b.CustomerName,
		"venue", b.Venue,
	)
	return b, nil
}

// ConfirmParams identifies the penciled hold to lock and the deposit that
// locks it. ReservationID is preferred when the caller has it; otherwise the
// customer-name search applies with its earliest-first tie-break. NewBooking,
// when set, signals explicit new-booking intent: if no penciled hold exists
// the deposit creates a confirmed reservation directly.
type ConfirmParams struct {
	CustomerName  string
	ReservationID string
	Payment       booking.Payment
	NewBooking    *CreateParams
}

// Confirm transitions PENCILED to CONFIRMED on a successful deposit. The
// transition happens at most once per booking per deposit; a failed update
// leaves the entry untouched. With no penciled match and no new-booking
// intent, it returns booking.ErrNoPenciledMatch and writes nothing.
func (s *Service) Confirm(ctx context.Context, p ConfirmParams) (*booking.Booking, error) {
	if p.Payment.AmountCents <= 0 {
		return nil, booking.ErrInvalidAmount
	}

	ev, err := s.store.FindPenciled(ctx, p.CustomerName, p.ReservationID, s.now())
	if err != nil {
		return nil, err
	}
	if ev == nil {
		if p.NewBooking == nil {
			return nil, booking.ErrNoPenciledMatch
		}
		nb := *p.NewBooking
		nb.Status = booking.StatusConfirmed
		b, err := s.Create(ctx, nb)
		if err != nil {
			return nil, err
		}
		ev := &calendar.Event{
			ID:          b.ID,
			Summary:     reservations.Title(b.Status, b.EventType, b.Venue, b.CustomerName),
			Description: reservations.RenderDescription(b),
		}
		b.RecordPayment(p.Payment)
		entry := b.Audit[len(b.Audit)-1]
		if err := s.store.AppendAudit(ctx, ev, entry); err != nil {
			s.logger.Warn("confirm: audit append after direct create failed", "error", err, "event_id", b.ID)
		}
		return b, nil
	}

	b := s.bookingFromEvent(ev)
	b.RecordPayment(p.Payment)
	entry := b.Audit[len(b.Audit)-1]
	if err := s.store.SetStatus(ctx, ev, booking.StatusConfirmed, entry); err != nil {
		return nil, err
	}
	b.Status = booking.StatusConfirmed
	s.logger.Info("reservation confirmed",
		"event_id", ev.ID,
		"customer", b.CustomerName,
		"amount_cents", p.Payment.AmountCents,
	)
	return b, nil
}

// RescheduleParams identifies the reservation to move and the new raw
// window. The buffer is re-derived from the booking's own nature: tours move
// unbuffered, events re-apply the hour on each side to the new raw window.
type RescheduleParams struct {
	CustomerName  string
	ReservationID string
	NewStart      time.Time
	NewEnd        time.Time
}

// Reschedule moves a reservation of any status to a new window. The conflict
// check excludes the reservation's own entry so it cannot block its own
// move. On conflict or provider failure the original entry is untouched and
// the error carries the reason. Status is preserved.
func (s *Service) Reschedule(ctx context.Context, p RescheduleParams) (*booking.Booking, error) {
	if !p.NewEnd.After(p.NewStart) {
		return nil, booking.ErrInvalidWindow
	}

	ev, err := s.store.FindByCustomer(ctx, p.CustomerName, p.ReservationID, s.now())
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, booking.ErrReservationNotFound
	}

	status, _, _, _, _ := reservations.ParseTitle(ev.Summary)
	isEvent := status != booking.StatusTour
	effStart, effEnd := booking.EffectiveWindow(p.NewStart, p.NewEnd, isEvent)

	res := s.checker.Check(ctx, calendar.Window{Start: effStart, End: effEnd}, ev.ID)
	switch res.Status {
	case availability.StatusUnavailable:
		return nil, &UnavailableError{Err: res.Err}
	case availability.StatusConflict:
		return nil, &ConflictError{Conflicts: res.Conflicts}
	}

	oldStart := ev.Start
	entry := booking.AuditEntry{
		Kind: booking.AuditReschedule,
		At:   s.now(),
		Note: fmt.Sprintf("moved from %s to %s", speech.Time(oldStart), speech.Time(effStart)),
	}
	if err := s.store.Move(ctx, ev, effStart, effEnd, entry); err != nil {
		return nil, err
	}

	b := s.bookingFromEvent(ev)
	b.RequestedStart = p.NewStart
	b.RequestedEnd = p.NewEnd
	b.Audit = append(b.Audit, entry)
	s.logger.Info("reservation rescheduled",
		"event_id", ev.ID,
		"status", b.Status,
		"new_start", effStart,
	)
	return b, nil
}

// Lookup finds an existing reservation of any status by customer name and
// optional stable ID, returning the reconstructed record.
func (s *Service) Lookup(ctx context.Context, customerName, reservationID string) (*booking.Booking, error) {
	ev, err := s.store.FindByCustomer(ctx, customerName, reservationID, s.now())
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, booking.ErrReservationNotFound
	}
	return s.bookingFromEvent(ev), nil
}

// bookingFromEvent reconstructs the structured record from a calendar entry.
func (s *Service) bookingFromEvent(ev *calendar.Event) *booking.Booking {
	status, eventType, venue, customer, _ := reservations.ParseTitle(ev.Summary)
	fields := reservations.ParseDescription(ev.Description)
	return &booking.Booking{
		ID:             ev.ID,
		CustomerName:   customer,
		Phone:          fields.Phone,
		Email:          fields.Email,
		GuestCount:     fields.Guests,
		AddOns:         fields.AddOns,
		Venue:          venue,
		EventType:      eventType,
		EffectiveStart: ev.Start,
		EffectiveEnd:   ev.End,
		Status:         status,
	}
}
