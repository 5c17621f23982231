// Package crm keeps the customer directory in Postgres current with what
// happens on calls: inquiries, payments, and booking details, keyed by
// canonical phone number.
package crm

// CanonicalPhone normalizes a caller-provided phone number to E.164-ish
// +1XXXXXXXXXX form. Ten-digit numbers are assumed US. The function is
// idempotent so already-canonical values pass through unchanged.
func CanonicalPhone(raw string) string {
	var digits []byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) == 10 {
		digits = append([]byte{'1'}, digits...)
	}
	return "+" + string(digits)
}
