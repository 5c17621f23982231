package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/natashamaes/venue-concierge/internal/availability"
	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/concierge"
	"github.com/natashamaes/venue-concierge/internal/contract"
	"github.com/natashamaes/venue-concierge/internal/crm"
	"github.com/natashamaes/venue-concierge/internal/idempotency"
	"github.com/natashamaes/venue-concierge/internal/notify"
	"github.com/natashamaes/venue-concierge/internal/observability/metrics"
	"github.com/natashamaes/venue-concierge/internal/payments"
	"github.com/natashamaes/venue-concierge/internal/sms"
	"github.com/natashamaes/venue-concierge/internal/speech"
	"github.com/natashamaes/venue-concierge/internal/venues"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// Spoken fallbacks. Raw provider errors are logged, never spoken; the
// assistant reads these lines to the caller instead.
const (
	lineSystemTrouble = "I'm having a little trouble with our system right now. Let me take your information and have our team confirm everything shortly."
	lineNotFound      = "I wasn't able to find a reservation under that name. Could you double-check the name it was booked under?"
	lineCardDeclined  = "I'm sorry, that card was declined. Would you like to try a different card?"
)

// ConciergeHandler serves the booking tools the voice assistant calls
// mid-conversation.
type ConciergeHandler struct {
	service  *concierge.Service
	contract *contract.Generator
	gateway  payments.Gateway
	crm      *crm.Synchronizer
	email    notify.EmailSender
	sms      sms.Sender
	idem     *idempotency.Store
	metrics  *metrics.ToolMetrics
	location *time.Location
	logger   *logging.Logger
}

// ConciergeHandlerConfig configures the ConciergeHandler.
type ConciergeHandlerConfig struct {
	Service  *concierge.Service
	Contract *contract.Generator
	Gateway  payments.Gateway
	CRM      *crm.Synchronizer
	Email    notify.EmailSender
	SMS      sms.Sender
	Idem     *idempotency.Store
	Metrics  *metrics.ToolMetrics
	Location *time.Location
	Logger   *logging.Logger
}

// NewConciergeHandler creates the tool-call handler.
func NewConciergeHandler(cfg ConciergeHandlerConfig) *ConciergeHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ConciergeHandler{
		service:  cfg.Service,
		contract: cfg.Contract,
		gateway:  cfg.Gateway,
		crm:      cfg.CRM,
		email:    cfg.Email,
		sms:      cfg.SMS,
		idem:     cfg.Idem,
		metrics:  cfg.Metrics,
		location: cfg.Location,
		logger:   cfg.Logger,
	}
}

// HandleToolCall is the HTTP handler for POST /tools/concierge.
func (h *ConciergeHandler) HandleToolCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var env toolCallEnvelope
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Error("tools: failed to read body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(body, &env); err != nil {
		h.logger.Error("tools: failed to parse envelope", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	inv, ok := parseToolInvocation(&env)
	if !ok {
		h.logger.Warn("tools: envelope carried no tool call")
		writeToolResult(w, "", lineSystemTrouble)
		return
	}

	h.logger.Info("tools: invocation received",
		"tool", inv.Name,
		"tool_call_id", inv.ID,
		"caller", inv.CallerPhone,
	)

	// Retried deliveries of side-effecting tools replay the cached line
	// instead of re-executing.
	if h.idem.Enabled() && sideEffecting(inv.Name) {
		if cached, found, err := h.idem.Get(ctx, inv.ID); err != nil {
			h.logger.Warn("tools: idempotency read failed", "error", err)
		} else if found {
			h.logger.Info("tools: duplicate delivery, replaying cached result",
				"tool", inv.Name, "tool_call_id", inv.ID)
			h.metrics.ObserveCall(inv.Name, "replayed")
			writeToolResult(w, inv.ID, cached)
			return
		}
	}

	start := time.Now()
	result := h.dispatch(ctx, inv)
	h.metrics.ObserveCallLatency(inv.Name, time.Since(start).Seconds())

	if h.idem.Enabled() && sideEffecting(inv.Name) {
		if err := h.idem.Put(ctx, inv.ID, result); err != nil {
			h.logger.Warn("tools: idempotency write failed", "error", err)
		}
	}
	writeToolResult(w, inv.ID, result)
}

func sideEffecting(tool string) bool {
	switch tool {
	case "book_appointment", "process_payment", "reschedule_booking":
		return true
	}
	return false
}

func (h *ConciergeHandler) dispatch(ctx context.Context, inv toolInvocation) string {
	switch inv.Name {
	case "check_availability":
		return h.checkAvailability(ctx, inv)
	case "book_appointment":
		return h.bookAppointment(ctx, inv)
	case "process_payment":
		return h.processPayment(ctx, inv)
	case "reschedule_booking":
		return h.rescheduleBooking(ctx, inv)
	case "send_booking_email":
		return h.sendBookingEmail(ctx, inv)
	case "send_info_email":
		return h.sendInfoEmail(ctx, inv)
	case "send_sms_link":
		return h.sendSMSLink(ctx, inv)
	}
	h.logger.Warn("tools: unknown tool", "tool", inv.Name)
	h.metrics.ObserveCall(inv.Name, "unknown")
	return lineSystemTrouble
}

// ----- check_availability -----

func (h *ConciergeHandler) checkAvailability(ctx context.Context, inv toolInvocation) string {
	start, end, err := h.parseWindow(inv.Args)
	if err != nil {
		h.logger.Warn("check_availability: bad window", "error", err)
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return lineSystemTrouble
	}
	isEvent := argBool(inv.Args, "is_event")

	res, err := h.service.CheckWindow(ctx, start, end, isEvent)
	if err != nil {
		h.logger.Warn("check_availability: invalid window", "error", err)
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return lineSystemTrouble
	}

	switch res.Status {
	case availability.StatusAvailable:
		h.metrics.ObserveCall(inv.Name, "available")
		return fmt.Sprintf("Good news, %s is open.", speech.Time(start))
	case availability.StatusConflict:
		h.metrics.ObserveCall(inv.Name, "conflict")
		h.metrics.ObserveConflict()
		c := res.Conflicts[0]
		return fmt.Sprintf("I'm sorry, that time is already taken. There's a booking starting %s. Would another time work?", c.HumanTime)
	default:
		h.logger.Error("check_availability: calendar unavailable", "error", res.Err)
		h.metrics.ObserveCall(inv.Name, "unavailable")
		return lineSystemTrouble
	}
}

// ----- book_appointment -----

func (h *ConciergeHandler) bookAppointment(ctx context.Context, inv toolInvocation) string {
	start, end, err := h.parseWindow(inv.Args)
	if err != nil {
		h.logger.Warn("book_appointment: bad window", "error", err)
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return lineSystemTrouble
	}

	isEvent := argBool(inv.Args, "is_event")
	customer := argString(inv.Args, "customer_name", "name")
	venueName := argString(inv.Args, "venue")
	eventType := argString(inv.Args, "event_type", "type")
	if customer == "" && inv.CallerName != "" {
		customer = inv.CallerName
	}
	phone := argString(inv.Args, "phone")
	if phone == "" {
		phone = inv.CallerPhone
	}

	status := booking.StatusTour
	if isEvent {
		status = booking.StatusPenciled
	}
	if eventType == "" {
		if isEvent {
			eventType = "Event"
		} else {
			eventType = "Tour"
		}
	}

	b, err := h.service.Create(ctx, concierge.CreateParams{
		CustomerName: customer,
		Phone:        phone,
		Email:        argString(inv.Args, "email", "attendee_email"),
		Venue:        venueName,
		EventType:    eventType,
		GuestCount:   argInt(inv.Args, "guest_count", "guests"),
		Start:        start,
		End:          end,
		IsEvent:      isEvent,
		Status:       status,
		AddOns:       eventAddOns(inv.Args, start, end, isEvent),
		Notes:        argString(inv.Args, "notes", "description"),
	})
	if err != nil {
		return h.speakCreateError(inv.Name, err)
	}

	h.syncInquiry(ctx, b)
	h.metrics.ObserveCall(inv.Name, "ok")
	h.metrics.ObserveBooking(string(b.Status))

	when := speech.Time(b.RawStart())
	if b.Status == booking.StatusTour {
		return fmt.Sprintf("You're all set! Your tour%s is booked for %s.", atVenue(venueName), when)
	}
	return fmt.Sprintf("Wonderful! I've penciled in your %s%s for %s. A 50%% deposit locks in the date, and our packages include setup and cleanup time at no extra cost.",
		strings.ToLower(eventType), atVenue(venueName), when)
}

// eventAddOns builds the priced extras for an event booking. The security
// guard is mandatory for events and billed over the full blocked window; the
// salmon upgrade only applies on top of the catering package.
func eventAddOns(args map[string]any, start, end time.Time, isEvent bool) []booking.AddOn {
	if !isEvent {
		return nil
	}
	effStart, effEnd := booking.EffectiveWindow(start, end, true)
	addOns := []booking.AddOn{contract.SecurityGuardAddOn(effStart, effEnd)}
	if argBool(args, "catering") {
		addOns = append(addOns, contract.CateringAddOn())
		if argBool(args, "salmon_upgrade") {
			addOns = append(addOns, contract.SalmonUpgradeAddOn())
		}
	}
	if n := argInt(args, "child_plates", "children_plates"); n > 0 {
		addOns = append(addOns, contract.ChildPlateAddOn(n))
	}
	return addOns
}

func atVenue(venueName string) string {
	if v, ok := venues.Resolve(venueName); ok {
		return " at " + v.Name
	}
	if venueName != "" {
		return " at " + venueName
	}
	return ""
}

func (h *ConciergeHandler) speakCreateError(tool string, err error) string {
	var conflict *concierge.ConflictError
	switch {
	case errors.As(err, &conflict):
		h.metrics.ObserveCall(tool, "conflict")
		h.metrics.ObserveConflict()
		c := conflict.Conflicts[0]
		return fmt.Sprintf("I'm sorry, that time is already taken. There's a booking starting %s. Would another time work?", c.HumanTime)
	case errors.Is(err, booking.ErrInvalidWindow):
		h.metrics.ObserveCall(tool, "bad_args")
		return "That end time comes before the start time. Could you give me the times once more?"
	default:
		h.logger.Error("tools: booking failed", "tool", tool, "error", err)
		h.metrics.ObserveCall(tool, "error")
		return lineSystemTrouble
	}
}

// ----- process_payment -----

func (h *ConciergeHandler) processPayment(ctx context.Context, inv toolInvocation) string {
	customer := argString(inv.Args, "customer_name", "name")
	amountStr := argString(inv.Args, "amount", "amount_dollars")
	amountCents, err := parseDollarsToCents(amountStr)
	if err != nil || amountCents <= 0 {
		h.logger.Warn("process_payment: bad amount", "amount", amountStr, "error", err)
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return "I didn't catch the payment amount. Could you confirm how much we're putting down today?"
	}

	card := payments.Card{
		Number:   argString(inv.Args, "card_number"),
		ExpMonth: argString(inv.Args, "exp_month", "expiration_month"),
		ExpYear:  argString(inv.Args, "exp_year", "expiration_year"),
		CVC:      argString(inv.Args, "cvc", "cvv"),
		ZIP:      argString(inv.Args, "zip", "postal_code"),
	}
	phone := argString(inv.Args, "phone")
	if phone == "" {
		phone = inv.CallerPhone
	}

	res, err := h.gateway.ConfirmPayment(ctx, amountCents, card, payments.Metadata{
		CustomerName: customer,
		Phone:        phone,
		EventType:    argString(inv.Args, "event_type"),
		Venue:        argString(inv.Args, "venue"),
		BookingID:    argString(inv.Args, "reservation_id"),
	})
	if err != nil {
		if errors.Is(err, payments.ErrDeclined) {
			h.metrics.ObserveCall(inv.Name, "declined")
			h.metrics.ObservePayment("declined", amountCents)
			return lineCardDeclined
		}
		h.logger.Error("process_payment: gateway error", "error", err)
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}

	// Internal reference for the description block and the office. Never
	// spoken to the caller.
	confirmation := "NM-" + uuid.New().String()[:8]
	payment := booking.Payment{
		AmountCents:    amountCents,
		ConfirmationID: confirmation,
		ReceivedAt:     time.Now(),
	}

	b, err := h.service.Confirm(ctx, concierge.ConfirmParams{
		CustomerName:  customer,
		ReservationID: argString(inv.Args, "reservation_id"),
		Payment:       payment,
	})
	if err != nil {
		if errors.Is(err, booking.ErrNoPenciledMatch) {
			h.logger.Warn("process_payment: charge succeeded but no penciled hold",
				"customer", customer, "intent_id", res.IntentID)
			h.metrics.ObserveCall(inv.Name, "no_match")
			h.metrics.ObservePayment("orphaned", amountCents)
			return "Your payment went through, but I couldn't match it to a penciled reservation. Our team will reach out shortly to finish your booking."
		}
		h.logger.Error("process_payment: confirm failed after charge",
			"error", err, "customer", customer, "intent_id", res.IntentID)
		h.metrics.ObserveCall(inv.Name, "error")
		return "Your payment went through, and our team will confirm the final details with you shortly."
	}

	h.metrics.ObserveCall(inv.Name, "ok")
	h.metrics.ObservePayment("succeeded", amountCents)
	h.crm.RecordPayment(ctx, phone, b.CustomerName, amountCents, confirmation, payment.ReceivedAt)

	if h.contract != nil {
		if _, err := h.contract.GenerateAndSend(ctx, b, true); err != nil {
			h.logger.Warn("process_payment: contract distribution failed", "error", err)
		}
	}

	return fmt.Sprintf("Your deposit of %s went through and your %s%s on %s is confirmed. We've emailed your updated agreement.",
		booking.FormatUSD(amountCents), strings.ToLower(b.EventType), atVenue(b.Venue), speech.Date(b.RawStart()))
}

// ----- reschedule_booking -----

func (h *ConciergeHandler) rescheduleBooking(ctx context.Context, inv toolInvocation) string {
	customer := argString(inv.Args, "customer_name", "name")
	start, end, err := h.parseWindowKeys(inv.Args, "new_start_time", "new_end_time")
	if err != nil {
		// Some prompts reuse the plain keys for the new window.
		start, end, err = h.parseWindow(inv.Args)
	}
	if err != nil {
		h.logger.Warn("reschedule_booking: bad window", "error", err)
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return lineSystemTrouble
	}

	b, err := h.service.Reschedule(ctx, concierge.RescheduleParams{
		CustomerName:  customer,
		ReservationID: argString(inv.Args, "reservation_id"),
		NewStart:      start,
		NewEnd:        end,
	})
	if err != nil {
		var conflict *concierge.ConflictError
		switch {
		case errors.Is(err, booking.ErrReservationNotFound):
			h.metrics.ObserveCall(inv.Name, "not_found")
			return lineNotFound
		case errors.As(err, &conflict):
			h.metrics.ObserveCall(inv.Name, "conflict")
			h.metrics.ObserveConflict()
			c := conflict.Conflicts[0]
			return fmt.Sprintf("I'm sorry, the new time is already taken. There's a booking starting %s, so I've left your original date in place.", c.HumanTime)
		case errors.Is(err, booking.ErrInvalidWindow):
			h.metrics.ObserveCall(inv.Name, "bad_args")
			return "That end time comes before the start time. Could you give me the new times once more?"
		default:
			h.logger.Error("reschedule_booking: failed", "error", err)
			h.metrics.ObserveCall(inv.Name, "error")
			return lineSystemTrouble
		}
	}

	h.metrics.ObserveCall(inv.Name, "ok")
	return fmt.Sprintf("Done! Your %s%s is now set for %s.",
		strings.ToLower(b.EventType), atVenue(b.Venue), speech.Time(b.RawStart()))
}

// ----- send_booking_email -----

func (h *ConciergeHandler) sendBookingEmail(ctx context.Context, inv toolInvocation) string {
	customer := argString(inv.Args, "customer_name", "name")
	b, err := h.service.Lookup(ctx, customer, argString(inv.Args, "reservation_id"))
	if err != nil {
		if errors.Is(err, booking.ErrReservationNotFound) {
			h.metrics.ObserveCall(inv.Name, "not_found")
			return lineNotFound
		}
		h.logger.Error("send_booking_email: lookup failed", "error", err)
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}

	if email := argString(inv.Args, "email"); email != "" {
		b.Email = email
	}
	if b.Email == "" {
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return "I don't have an email address on file for you yet. What's the best one to send it to?"
	}

	if h.contract == nil {
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}
	if _, err := h.contract.GenerateAndSend(ctx, b, b.Status == booking.StatusConfirmed); err != nil {
		h.logger.Error("send_booking_email: distribution failed", "error", err)
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}

	h.metrics.ObserveCall(inv.Name, "ok")
	return "Done! I've emailed your booking agreement. It should arrive within a couple of minutes."
}

// ----- send_info_email -----

func (h *ConciergeHandler) sendInfoEmail(ctx context.Context, inv toolInvocation) string {
	email := argString(inv.Args, "email")
	if email == "" {
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return "What's the best email address to send our packages to?"
	}
	name := argString(inv.Args, "customer_name", "name")
	if name == "" {
		name = inv.CallerName
	}
	venueName := argString(inv.Args, "venue")

	if h.email == nil {
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}
	msg := notify.EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Natasha Mae's Enterprises: Venues and Packages",
		Body:    infoEmailBody(name, venueName),
	}
	if err := h.email.Send(ctx, msg); err != nil {
		h.logger.Error("send_info_email: send failed", "error", err)
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}

	phone := argString(inv.Args, "phone")
	if phone == "" {
		phone = inv.CallerPhone
	}
	h.crm.RecordInquiry(ctx, phone, name, email, "", venueName, nil)

	h.metrics.ObserveCall(inv.Name, "ok")
	return "Done! I've emailed our packages and pricing. It should arrive within a couple of minutes."
}

func infoEmailBody(name, venueName string) string {
	var sb strings.Builder
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}
	fmt.Fprintf(&sb, "%s,\n\nThank you for your interest in Natasha Mae's Enterprises, where we create unforgettable memories.\n\n", greeting)
	if v, ok := venues.Resolve(venueName); ok {
		fmt.Fprintf(&sb, "%s\n%s\nCapacity: up to %d guests\n\n", v.Name, v.Address, v.Capacity)
	} else {
		for _, v := range venues.All() {
			fmt.Fprintf(&sb, "%s\n%s\nCapacity: up to %d guests\n\n", v.Name, v.Address, v.Capacity)
		}
	}
	sb.WriteString("Ask about our Early Bird special: events starting between 9 AM and 4 PM at The Vault or Liberty Palace receive 50% off venue rental.\n\n")
	sb.WriteString("Full packages and pricing: https://www.natashamaes.com/packages\n\nWarm regards,\nNatasha Mae's Enterprises\n")
	return sb.String()
}

// ----- send_sms_link -----

// linkMessages maps the assistant's link request types to the texts the
// office sends out. Unknown types fall back to the main site.
var linkMessages = map[string]string{
	"tour":          "Natasha Mae's: Schedule your VIP tour here: https://www.natashamaes.com/contact-us",
	"packages":      "Natasha Mae's: View our full packages: https://www.natashamaes.com/packages",
	"registration":  "Natasha Mae's: Register here: https://www.natashamaes.com/register",
	"invoice":       "Natasha Mae's: View your invoice: https://www.natashamaes.com/payment",
	"vault_map":     "The Vault: 120 High St, Burlington NJ - GPS: https://maps.app.goo.gl/vaultburlington",
	"liberty_map":   "Liberty Palace: Franklin Mills - GPS: https://maps.app.goo.gl/libertypalace",
	"frankford_map": "Frankford Ave: 4500 Frankford Ave, Philly - GPS: https://maps.app.goo.gl/frankfordave",
	"default":       "Natasha Mae's: Visit us at https://www.natashamaes.com",
}

func (h *ConciergeHandler) sendSMSLink(ctx context.Context, inv toolInvocation) string {
	if h.sms == nil {
		h.logger.Warn("send_sms_link: no sms sender configured")
		h.metrics.ObserveCall(inv.Name, "unavailable")
		return lineSystemTrouble
	}

	rawPhone := argString(inv.Args, "phone")
	if rawPhone == "" {
		rawPhone = inv.CallerPhone
	}
	phone := crm.CanonicalPhone(rawPhone)
	if phone == "" {
		h.metrics.ObserveCall(inv.Name, "bad_args")
		return "What's the best mobile number to text that to?"
	}

	linkType := strings.ToLower(argString(inv.Args, "type", "link_type"))
	body, ok := linkMessages[linkType]
	if !ok {
		body = linkMessages["default"]
	}

	if err := h.sms.Send(ctx, phone, body); err != nil {
		h.logger.Error("send_sms_link: send failed", "error", err, "type", linkType)
		h.metrics.ObserveCall(inv.Name, "error")
		return lineSystemTrouble
	}

	h.metrics.ObserveCall(inv.Name, "ok")
	switch linkType {
	case "vault_map", "liberty_map", "frankford_map":
		return "I've just texted you the address and a map link. It should arrive in a moment."
	case "invoice":
		return "I've just texted you a link to view your invoice."
	case "tour":
		return "I've just texted you a link to schedule your tour."
	default:
		return "I've just texted you the link. It should arrive in a moment."
	}
}

// ----- shared helpers -----

func (h *ConciergeHandler) syncInquiry(ctx context.Context, b *booking.Booking) {
	date := b.RawStart()
	h.crm.RecordInquiry(ctx, b.Phone, b.CustomerName, b.Email, b.EventType, b.Venue, &date)
}

func (h *ConciergeHandler) parseWindow(args map[string]any) (time.Time, time.Time, error) {
	return h.parseWindowKeys(args, "start_time", "end_time")
}

func (h *ConciergeHandler) parseWindowKeys(args map[string]any, startKey, endKey string) (time.Time, time.Time, error) {
	startStr := argString(args, startKey, startKey+"_iso")
	endStr := argString(args, endKey, endKey+"_iso")
	start, err := h.parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: %w", startKey, err)
	}
	end, err := h.parseTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: %w", endKey, err)
	}
	return start, end, nil
}

// parseTime accepts RFC3339 with offset; bare local timestamps fall back to
// the venue timezone.
func (h *ConciergeHandler) parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, h.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable time %q", s)
	}
	return t, nil
}
