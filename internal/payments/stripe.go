package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/natashamaes/venue-concierge/pkg/logging"
)

var stripeTracer = otel.Tracer("concierge.internal.payments.stripe")

// StripeGateway charges cards through the Stripe API: a payment method is
// created from the card details, then a payment intent is created and
// confirmed in the same request.
type StripeGateway struct {
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewStripeGateway creates a Stripe payment gateway.
func NewStripeGateway(secretKey string, dryRun bool, logger *logging.Logger) *StripeGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &StripeGateway{
		secretKey:  secretKey,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		dryRun:     dryRun,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (g *StripeGateway) WithBaseURL(baseURL string) *StripeGateway {
	if baseURL != "" {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
	return g
}

// ConfirmPayment charges the card for the given amount.
func (g *StripeGateway) ConfirmPayment(ctx context.Context, amountCents int64, card Card, meta Metadata) (*Result, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.confirm_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("concierge.customer", meta.CustomerName),
		attribute.Int("concierge.amount_cents", int(amountCents)),
	)

	if amountCents <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive, got %d", amountCents)
	}

	if g.dryRun {
		fakeID := "pi_dryrun_" + uuid.New().String()[:8]
		g.logger.Info("stripe dry run: skipping charge",
			"customer", meta.CustomerName, "amount_cents", amountCents)
		return &Result{IntentID: fakeID, AmountCents: amountCents, Status: "succeeded"}, nil
	}

	methodID, err := g.createPaymentMethod(ctx, card)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", amountCents))
	form.Set("currency", "usd")
	form.Set("payment_method", methodID)
	form.Set("confirm", "true")
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")
	form.Set("description", fmt.Sprintf("Deposit: %s at %s", meta.EventType, meta.Venue))
	form.Set("metadata[customer_name]", meta.CustomerName)
	form.Set("metadata[phone]", meta.Phone)
	form.Set("metadata[event_type]", meta.EventType)
	form.Set("metadata[venue]", meta.Venue)
	if meta.BookingID != "" {
		form.Set("metadata[booking_id]", meta.BookingID)
	}

	var parsed stripePaymentIntent
	if err := g.post(ctx, "/v1/payment_intents", form, &parsed); err != nil {
		return nil, err
	}

	switch parsed.Status {
	case "succeeded", "requires_capture":
	default:
		g.logger.Warn("stripe payment not settled", "status", parsed.Status, "intent_id", parsed.ID)
		return nil, fmt.Errorf("payments: intent %s status %s: %w", parsed.ID, parsed.Status, ErrDeclined)
	}

	g.logger.Info("stripe payment confirmed",
		"intent_id", parsed.ID,
		"amount_cents", amountCents,
		"customer", meta.CustomerName,
	)
	return &Result{IntentID: parsed.ID, AmountCents: amountCents, Status: parsed.Status}, nil
}

// createPaymentMethod tokenizes the raw card details.
func (g *StripeGateway) createPaymentMethod(ctx context.Context, card Card) (string, error) {
	form := url.Values{}
	form.Set("type", "card")
	form.Set("card[number]", strings.ReplaceAll(card.Number, " ", ""))
	form.Set("card[exp_month]", card.ExpMonth)
	form.Set("card[exp_year]", card.ExpYear)
	form.Set("card[cvc]", card.CVC)
	if card.ZIP != "" {
		form.Set("billing_details[address][postal_code]", card.ZIP)
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/v1/payment_methods", form, &parsed); err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("payments: stripe response missing payment method id")
	}
	return parsed.ID, nil
}

func (g *StripeGateway) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("payments: stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", g.apiVersion)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payments: stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		var apiErr stripeErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Code == "card_declined" {
			return fmt.Errorf("payments: %s: %w", apiErr.Error.Message, ErrDeclined)
		}
		return fmt.Errorf("payments: stripe api status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("payments: stripe decode: %w", err)
	}
	return nil
}

// stripePaymentIntent is the subset of Stripe's PaymentIntent we need.
type stripePaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// stripeErrorResponse represents a Stripe API error.
type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

var _ Gateway = (*StripeGateway)(nil)
