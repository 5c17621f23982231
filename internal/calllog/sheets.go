// Package calllog appends end-of-call summaries to the office spreadsheet.
package calllog

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gsheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/natashamaes/venue-concierge/pkg/logging"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// Entry is one logged call.
type Entry struct {
	At           time.Time
	CallerName   string
	CallerPhone  string
	Summary      string
	Outcome      string
	DurationSecs int
}

// CallLogger records call entries. Satisfied by SheetsLogger; handler tests
// use a fake.
type CallLogger interface {
	Append(ctx context.Context, e Entry) error
}

// SheetsConfig holds credentials and the target spreadsheet.
type SheetsConfig struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
}

// SheetsLogger appends rows to a Google Sheet.
type SheetsLogger struct {
	svc           *gsheets.Service
	spreadsheetID string
	logger        *logging.Logger
}

// NewSheetsLogger builds the production sheet client. Returns nil (not an
// error) when no spreadsheet or credentials are configured.
func NewSheetsLogger(ctx context.Context, cfg SheetsConfig, logger *logging.Logger) (*SheetsLogger, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SpreadsheetID == "" {
		return nil, nil
	}

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts,
			option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)),
			option.WithScopes(gsheets.SpreadsheetsScope),
		)
	case cfg.RefreshToken != "" && cfg.ClientID != "" && cfg.ClientSecret != "":
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
			Scopes:       []string{gsheets.SpreadsheetsScope},
		}
		ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		opts = append(opts, option.WithTokenSource(ts))
	default:
		logger.Warn("calllog: no google credentials configured, sheet logging disabled")
		return nil, nil
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calllog: init sheets client: %w", err)
	}
	return &SheetsLogger{svc: svc, spreadsheetID: cfg.SpreadsheetID, logger: logger}, nil
}

// Append writes one row to the sheet.
func (s *SheetsLogger) Append(ctx context.Context, e Entry) error {
	row := Row(e)
	values := &gsheets.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, "Sheet1!A:A", values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("calllog: append row: %w", err)
	}
	s.logger.Info("call logged to sheet", "caller", e.CallerName, "outcome", e.Outcome)
	return nil
}

// Row converts an entry to the sheet's column layout: timestamp, caller,
// phone, outcome, duration, summary.
func Row(e Entry) []any {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	var duration string
	if e.DurationSecs > 0 {
		duration = fmt.Sprintf("%dm%02ds", e.DurationSecs/60, e.DurationSecs%60)
	}
	return []any{
		at.Format("2006-01-02 15:04:05"),
		e.CallerName,
		e.CallerPhone,
		e.Outcome,
		duration,
		e.Summary,
	}
}
