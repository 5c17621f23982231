package crm

import "testing"

func TestCanonicalPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(555) 123-4567", "+15551234567"},
		{"5551234567", "+15551234567"},
		{"+1 555 123 4567", "+15551234567"},
		{"+15551234567", "+15551234567"},
		{"555.123.4567", "+15551234567"},
		{"011442071234567", "+011442071234567"},
		{"", ""},
		{"ext", ""},
	}
	for _, c := range cases {
		if got := CanonicalPhone(c.in); got != c.want {
			t.Errorf("CanonicalPhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalPhoneIdempotent(t *testing.T) {
	once := CanonicalPhone("(555) 123-4567")
	if CanonicalPhone(once) != once {
		t.Fatalf("canonicalization must be idempotent, got %q", CanonicalPhone(once))
	}
}
