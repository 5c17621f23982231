package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/natashamaes/venue-concierge/internal/calllog"
	"github.com/natashamaes/venue-concierge/internal/crm"
	"github.com/natashamaes/venue-concierge/internal/notify"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// ProfileDirectory looks up a caller's customer record by phone number.
type ProfileDirectory interface {
	Lookup(ctx context.Context, rawPhone string) (*crm.Profile, bool)
}

// ReportHandler receives the voice platform's post-call webhooks on
// /inbound. End-of-call reports fan out to the office inbox and the call
// log; everything else is acknowledged and dropped.
type ReportHandler struct {
	email       notify.EmailSender
	callLog     calllog.CallLogger
	directory   ProfileDirectory
	officeEmail string
	logger      *logging.Logger
}

type ReportHandlerConfig struct {
	Email       notify.EmailSender
	CallLog     calllog.CallLogger
	Directory   ProfileDirectory
	OfficeEmail string
	Logger      *logging.Logger
}

func NewReportHandler(cfg ReportHandlerConfig) *ReportHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &ReportHandler{
		email:       cfg.Email,
		callLog:     cfg.CallLog,
		directory:   cfg.Directory,
		officeEmail: cfg.OfficeEmail,
		logger:      cfg.Logger,
	}
}

// HandleInbound is the HTTP handler for POST /inbound.
func (h *ReportHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	var env toolCallEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.logger.Error("inbound: failed to parse body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if env.Message.Type != "end-of-call-report" {
		h.logger.Debug("inbound: ignoring message", "type", env.Message.Type)
		writeJSON(w, map[string]string{"status": "acknowledged"})
		return
	}

	name, phone := callerFromEnvelope(&env)
	h.logger.Info("inbound: end-of-call report received",
		"caller", phone, "reason", env.Message.Call.EndReason)

	if h.email != nil && h.officeEmail != "" {
		msg := notify.EmailMessage{
			To:      h.officeEmail,
			ToName:  "Natasha Mae's Enterprises",
			Subject: "New Inquiry: Natasha Mae's",
			Body:    h.reportBody(r.Context(), &env, name, phone),
		}
		if err := h.email.Send(r.Context(), msg); err != nil {
			h.logger.Error("inbound: office notification failed", "error", err)
		}
	}

	if h.callLog != nil {
		entry := calllog.Entry{
			At:           time.Now(),
			CallerName:   name,
			CallerPhone:  phone,
			Summary:      env.Message.Summary,
			Outcome:      env.Message.Call.EndReason,
			DurationSecs: durationSeconds(&env),
		}
		if err := h.callLog.Append(r.Context(), entry); err != nil {
			h.logger.Error("inbound: call log append failed", "error", err)
		}
	}

	writeJSON(w, map[string]string{"status": "OK"})
}

func callerFromEnvelope(env *toolCallEnvelope) (name, phone string) {
	name = env.Message.Call.Customer.Name
	if name == "" {
		name = env.Message.Customer.Name
	}
	phone = env.Message.Call.Customer.Number
	if phone == "" {
		phone = env.Message.Customer.Number
	}
	return name, phone
}

func (h *ReportHandler) reportBody(ctx context.Context, env *toolCallEnvelope, name, phone string) string {
	var sb strings.Builder
	if name != "" {
		fmt.Fprintf(&sb, "Caller: %s\n", name)
	}
	if phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", phone)
	}
	if h.directory != nil && phone != "" {
		if p, ok := h.directory.Lookup(ctx, phone); ok {
			for _, line := range crm.HistoryLines(p) {
				sb.WriteString(line + "\n")
			}
		}
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	summary := env.Message.Summary
	if summary == "" {
		summary = "(no summary available)"
	}
	sb.WriteString(summary)
	if env.Message.Transcript != "" {
		sb.WriteString("\n\n---\n\n")
		sb.WriteString(env.Message.Transcript)
	}
	return sb.String()
}

// durationSeconds tolerates the duration arriving at either level and as
// either a number or a string.
func durationSeconds(env *toolCallEnvelope) int {
	if env.Message.DurationSeconds > 0 {
		return int(env.Message.DurationSeconds)
	}
	switch d := env.Message.Call.Duration.(type) {
	case float64:
		return int(d)
	case string:
		if n, err := strconv.ParseFloat(d, 64); err == nil {
			return int(n)
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
