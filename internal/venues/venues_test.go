package venues

import (
	"testing"
	"time"
)

func TestResolveSubstringMatch(t *testing.T) {
	tests := []struct {
		mention string
		wantKey string
	}{
		{"The Vault", KeyVault},
		{"the vault ballroom in burlington", KeyVault},
		{"vault", KeyVault},
		{"Liberty Palace", KeyLiberty},
		{"liberty", KeyLiberty},
		{"Frankford Ave", KeyFrankford},
	}
	for _, tt := range tests {
		t.Run(tt.mention, func(t *testing.T) {
			v, ok := Resolve(tt.mention)
			if !ok {
				t.Fatalf("expected %q to resolve", tt.mention)
			}
			if v.Key != tt.wantKey {
				t.Fatalf("expected %s, got %s", tt.wantKey, v.Key)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, ok := Resolve("some other hall"); ok {
		t.Fatal("expected no match for unknown venue")
	}
	if _, ok := Resolve(""); ok {
		t.Fatal("expected no match for empty mention")
	}
}

func TestBasePriceByDay(t *testing.T) {
	vault, _ := Resolve("vault")
	saturday := time.Date(2026, 6, 13, 18, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)

	if got := BasePriceCents(vault, saturday); got != 379500 {
		t.Fatalf("expected Saturday Vault rate 379500, got %d", got)
	}
	if got := BasePriceCents(vault, friday); got != 250000 {
		t.Fatalf("expected off-peak Vault rate 250000, got %d", got)
	}

	liberty, _ := Resolve("liberty")
	if got := BasePriceCents(liberty, saturday); got != 300000 {
		t.Fatalf("expected Liberty rate 300000, got %d", got)
	}

	frankford, _ := Resolve("frankford")
	if got := BasePriceCents(frankford, friday); got != 100000 {
		t.Fatalf("expected Frankford rate 100000, got %d", got)
	}
}

func TestEarlyBirdWindow(t *testing.T) {
	vault, _ := Resolve("vault")
	frankford, _ := Resolve("frankford")

	morning := time.Date(2026, 6, 13, 11, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 6, 13, 17, 0, 0, 0, time.UTC)
	cutoff := time.Date(2026, 6, 13, 16, 0, 0, 0, time.UTC)

	if !EarlyBirdEligible(vault, morning) {
		t.Fatal("expected 11 AM Vault start to be early bird")
	}
	if EarlyBirdEligible(vault, evening) {
		t.Fatal("expected 5 PM start to be regular pricing")
	}
	if EarlyBirdEligible(vault, cutoff) {
		t.Fatal("expected 4 PM start to be regular pricing")
	}
	if EarlyBirdEligible(frankford, morning) {
		t.Fatal("early bird does not apply at Frankford Ave")
	}
}
