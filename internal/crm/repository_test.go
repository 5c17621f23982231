package crm

import (
	"context"
	"strings"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestRepositoryUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithExec(mock)

	name := "Sarah Johnson"
	note := "2026-06-01: paid $1,897.50 (NM-1a2b3c4d)"
	amount := int64(189750)
	mock.ExpectExec("INSERT INTO customers").
		WithArgs("+15551234567", &name, (*string)(nil), (*string)(nil), (*string)(nil),
			(*time.Time)(nil), &amount, &note).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), "+15551234567", ProfileUpdate{
		Name:         &name,
		PaymentCents: &amount,
		Note:         &note,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryUpsertRequiresPhone(t *testing.T) {
	mock, _ := pgxmock.NewPool()
	defer mock.Close()

	repo := newRepositoryWithExec(mock)
	if err := repo.Upsert(context.Background(), "", ProfileUpdate{}); err == nil {
		t.Fatal("expected error for empty phone")
	}
}

func TestRepositoryGetByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithExec(mock)

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"phone", "name", "email", "event_type", "venue", "event_date",
		"last_payment_cents", "notes", "created_at", "updated_at",
	}).AddRow("+15551234567", "Sarah Johnson", "sarah@example.com", "Wedding", "The Vault",
		(*time.Time)(nil), (*int64)(nil), "", now, now)
	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs("+15551234567").
		WillReturnRows(rows)

	p, err := repo.GetByPhone(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Sarah Johnson" || p.Venue != "The Vault" {
		t.Fatalf("unexpected profile %+v", p)
	}

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs("+19990000000").
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByPhone(context.Background(), "+19990000000"); err != ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type recordingRepo struct {
	phones  []string
	updates []ProfileUpdate
	profile *Profile
	err     error
}

func (r *recordingRepo) Upsert(_ context.Context, phone string, upd ProfileUpdate) error {
	if r.err != nil {
		return r.err
	}
	r.phones = append(r.phones, phone)
	r.updates = append(r.updates, upd)
	return nil
}

func (r *recordingRepo) GetByPhone(_ context.Context, phone string) (*Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.phones = append(r.phones, phone)
	if r.profile == nil {
		return nil, ErrProfileNotFound
	}
	return r.profile, nil
}

func TestSynchronizerCanonicalizesPhone(t *testing.T) {
	repo := &recordingRepo{}
	sync := NewSynchronizer(repo, nil)

	sync.RecordInquiry(context.Background(), "(555) 123-4567", "Sarah Johnson", "", "Wedding", "The Vault", nil)

	if len(repo.phones) != 1 || repo.phones[0] != "+15551234567" {
		t.Fatalf("expected canonical phone, got %v", repo.phones)
	}
	if repo.updates[0].Email != nil {
		t.Fatal("empty fields must stay nil so they do not clobber stored values")
	}
}

func TestSynchronizerSkipsUnusablePhone(t *testing.T) {
	repo := &recordingRepo{}
	sync := NewSynchronizer(repo, nil)

	sync.RecordPayment(context.Background(), "unknown", "Sarah Johnson", 100, "NM-x", time.Now())
	if len(repo.phones) != 0 {
		t.Fatal("payment with no usable phone must not reach the repo")
	}
}

func TestSynchronizerLookupCanonicalizesPhone(t *testing.T) {
	repo := &recordingRepo{profile: &Profile{Phone: "+15551234567", Name: "Sarah Johnson"}}
	sync := NewSynchronizer(repo, nil)

	p, ok := sync.Lookup(context.Background(), "(555) 123-4567")
	if !ok || p.Name != "Sarah Johnson" {
		t.Fatalf("lookup = %v, %v", p, ok)
	}
	if repo.phones[0] != "+15551234567" {
		t.Fatalf("expected canonical phone, got %v", repo.phones)
	}
}

func TestSynchronizerLookupMissesQuietly(t *testing.T) {
	sync := NewSynchronizer(&recordingRepo{}, nil)
	if _, ok := sync.Lookup(context.Background(), "5551234567"); ok {
		t.Fatal("expected miss for unknown caller")
	}

	var disabled *Synchronizer
	if _, ok := disabled.Lookup(context.Background(), "5551234567"); ok {
		t.Fatal("nil synchronizer must read as no history")
	}
}

func TestHistoryLines(t *testing.T) {
	paid := int64(189750)
	when := time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC)
	lines := HistoryLines(&Profile{
		Name:             "Sarah Johnson",
		Email:            "sarah@example.com",
		EventType:        "Wedding",
		Venue:            "The Vault",
		EventDate:        &when,
		LastPaymentCents: &paid,
		UpdatedAt:        when,
	})

	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"Returning customer: Sarah Johnson",
		"Last payment: $1,897.50 on August 2, 2026",
		"Previous interest: Wedding at The Vault on August 2, 2026",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in:\n%s", want, joined)
		}
	}

	if got := HistoryLines(nil); got != nil {
		t.Fatalf("nil profile should produce no lines, got %v", got)
	}
}

func TestSynchronizerSwallowsRepoErrors(t *testing.T) {
	repo := &recordingRepo{err: context.DeadlineExceeded}
	sync := NewSynchronizer(repo, nil)

	// Must not panic or surface the error.
	sync.RecordPayment(context.Background(), "5551234567", "Sarah Johnson", 189750, "NM-1a2b3c4d",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
}
