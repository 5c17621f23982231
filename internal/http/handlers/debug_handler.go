package handlers

import (
	"net/http"

	"github.com/natashamaes/venue-concierge/internal/config"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// DebugHandler reports which integrations are configured without exposing
// the secrets themselves. Served behind admin auth.
type DebugHandler struct {
	cfg    *config.Config
	logger *logging.Logger
}

func NewDebugHandler(cfg *config.Config, logger *logging.Logger) *DebugHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DebugHandler{cfg: cfg, logger: logger}
}

// HandleConfig is the HTTP handler for GET /debug/config.
func (h *DebugHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	c := h.cfg
	report := map[string]string{
		"env":                  c.Env,
		"port":                 c.Port,
		"calendar_id":          maskValue(c.CalendarID),
		"google_client_id":     maskValue(c.GoogleClientID),
		"google_client_secret": maskValue(c.GoogleClientSecret),
		"google_refresh_token": maskValue(c.GoogleRefreshToken),
		"call_log_sheet_id":    maskValue(c.CallLogSheetID),
		"database_url":         maskValue(c.DatabaseURL),
		"stripe_secret_key":    maskValue(c.StripeSecretKey),
		"sendgrid_api_key":     maskValue(c.SendGridAPIKey),
		"clicksend_username":   maskValue(c.ClickSendUsername),
		"clicksend_api_key":    maskValue(c.ClickSendAPIKey),
		"office_email":         maskValue(c.OfficeEmail),
		"contract_bucket":      maskValue(c.ContractBucket),
		"redis_addr":           maskValue(c.RedisAddr),
		"venue_timezone":       c.VenueTimezone,
	}
	writeJSON(w, report)
}

// maskValue shows just enough of a value to tell configurations apart.
func maskValue(v string) string {
	if v == "" {
		return "MISSING"
	}
	if len(v) <= 8 {
		return "SET"
	}
	return v[:4] + "..." + v[len(v)-4:]
}
