package contract

import (
	"context"
	"fmt"

	"github.com/natashamaes/venue-concierge/internal/booking"
	"github.com/natashamaes/venue-concierge/internal/notify"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// Archive persists generated documents. Satisfied by archive.Store.
type Archive interface {
	UploadOrReplace(ctx context.Context, folder, name string, data []byte, contentType string) (string, error)
	Enabled() bool
}

// Generator builds the agreement document and distributes it: email to the
// customer, a copy to the office inbox, and a durable copy in the archive.
type Generator struct {
	email       notify.EmailSender
	archive     Archive
	officeEmail string
	logger      *logging.Logger
}

// NewGenerator wires a contract generator. Any collaborator may be nil; the
// corresponding distribution step is skipped.
func NewGenerator(email notify.EmailSender, archive Archive, officeEmail string, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		email:       email,
		archive:     archive,
		officeEmail: officeEmail,
		logger:      logger,
	}
}

// GenerateAndSend prices the booking, renders the agreement, and sends it
// out. Set updated when regenerating after a confirmation or reschedule so
// the customer sees it framed as a revision, not a new contract.
//
// The customer email is the essential outcome and its failure is returned.
// Office copy and archive failures are logged and swallowed so a secondary
// outage cannot block a booking.
func (g *Generator) GenerateAndSend(ctx context.Context, b *booking.Booking, updated bool) (string, error) {
	q, err := BuildQuote(b)
	if err != nil {
		return "", err
	}
	doc := Document(b, q)

	subject := fmt.Sprintf("Your booking agreement: %s at %s", b.EventType, b.Venue)
	intro := "Thank you for booking with Natasha Mae's Enterprises. Your agreement is below and attached."
	if updated {
		subject = fmt.Sprintf("Your updated booking agreement: %s at %s", b.EventType, b.Venue)
		intro = "Your booking has been updated. The revised agreement is below and attached."
	}

	attachment := notify.Attachment{
		Filename:    archiveName(b),
		ContentType: "text/plain",
		Data:        []byte(doc),
	}

	if g.email != nil && b.Email != "" {
		msg := notify.EmailMessage{
			To:          b.Email,
			ToName:      b.CustomerName,
			Subject:     subject,
			Body:        intro + "\n\n" + doc,
			Attachments: []notify.Attachment{attachment},
		}
		if err := g.email.Send(ctx, msg); err != nil {
			return doc, fmt.Errorf("contract: send to customer: %w", err)
		}
	}

	if g.email != nil && g.officeEmail != "" {
		msg := notify.EmailMessage{
			To:          g.officeEmail,
			Subject:     fmt.Sprintf("[office copy] %s for %s", subject, b.CustomerName),
			Body:        doc,
			Attachments: []notify.Attachment{attachment},
		}
		if err := g.email.Send(ctx, msg); err != nil {
			g.logger.Warn("contract: office copy failed", "error", err, "customer", b.CustomerName)
		}
	}

	if g.archive != nil && g.archive.Enabled() {
		if _, err := g.archive.UploadOrReplace(ctx, "contracts", archiveName(b), []byte(doc), "text/plain"); err != nil {
			g.logger.Warn("contract: archive failed", "error", err, "customer", b.CustomerName)
		}
	}

	g.logger.Info("contract generated",
		"customer", b.CustomerName,
		"total_cents", q.TotalCents,
		"updated", updated,
	)
	return doc, nil
}

// archiveName keys the document by who, what, and when, so a regenerated
// contract replaces the prior copy for the same booking.
func archiveName(b *booking.Booking) string {
	return fmt.Sprintf("%s - %s - %s.txt", b.CustomerName, b.EventType, b.RawStart().Format("2006-01-02"))
}
