package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/natashamaes/venue-concierge/pkg/logging"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// GoogleConfig holds credentials for the Google Calendar provider. Service
// account JSON is preferred; the OAuth refresh token trio is the fallback.
type GoogleConfig struct {
	CalendarID         string
	ServiceAccountJSON string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
}

// GoogleProvider implements Provider on the Google Calendar API.
type GoogleProvider struct {
	svc        *gcal.Service
	calendarID string
	logger     *logging.Logger
}

// NewGoogleProvider builds the production calendar client. Returns nil (not
// an error) when no credentials are configured, so the feature can report
// itself unavailable instead of crashing requests.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, logger *logging.Logger) (*GoogleProvider, error) {
	if logger == nil {
		logger = logging.Default()
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts,
			option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)),
			option.WithScopes(gcal.CalendarEventsScope),
		)
	case cfg.RefreshToken != "" && cfg.ClientID != "" && cfg.ClientSecret != "":
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
			Scopes:       []string{gcal.CalendarEventsScope},
		}
		ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		opts = append(opts, option.WithTokenSource(ts))
	default:
		logger.Warn("calendar: no google credentials configured, provider disabled")
		return nil, nil
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: init google client: %w", err)
	}
	return &GoogleProvider{svc: svc, calendarID: calendarID, logger: logger}, nil
}

// ListOverlapping returns events within the window, ordered by start time.
func (g *GoogleProvider) ListOverlapping(ctx context.Context, w Window) ([]Event, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		TimeMin(w.Start.Format(time.RFC3339)).
		TimeMax(w.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: list overlapping: %w", err)
	}
	return convertEvents(resp.Items), nil
}

// Create inserts an event and returns the Google event ID.
func (g *GoogleProvider) Create(ctx context.Context, ev Event) (string, error) {
	body := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
	}
	created, err := g.svc.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	g.logger.Info("calendar: event created", "event_id", created.Id, "summary", ev.Summary)
	return created.Id, nil
}

// Patch applies a partial update; unset fields keep their current values.
func (g *GoogleProvider) Patch(ctx context.Context, id string, p Patch) error {
	body := &gcal.Event{}
	if p.Summary != nil {
		body.Summary = *p.Summary
	}
	if p.Description != nil {
		body.Description = *p.Description
	}
	if p.Start != nil {
		body.Start = &gcal.EventDateTime{DateTime: p.Start.Format(time.RFC3339)}
	}
	if p.End != nil {
		body.End = &gcal.EventDateTime{DateTime: p.End.Format(time.RFC3339)}
	}
	if _, err := g.svc.Events.Patch(g.calendarID, id, body).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: patch event %s: %w", id, err)
	}
	return nil
}

// SearchText runs a free-text query over future entries, ordered by start.
func (g *GoogleProvider) SearchText(ctx context.Context, query string, timeMin time.Time) ([]Event, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		Q(query).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: search %q: %w", query, err)
	}
	return convertEvents(resp.Items), nil
}

func convertEvents(items []*gcal.Event) []Event {
	out := make([]Event, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ev := Event{
			ID:          it.Id,
			Summary:     it.Summary,
			Description: it.Description,
			Location:    it.Location,
		}
		if it.Start != nil {
			ev.Start = parseEventTime(it.Start)
		}
		if it.End != nil {
			ev.End = parseEventTime(it.End)
		}
		out = append(out, ev)
	}
	return out
}

// parseEventTime handles both timed entries (DateTime) and all-day blocks
// (Date only), which the venue calendar uses for holidays and closures.
func parseEventTime(edt *gcal.EventDateTime) time.Time {
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
