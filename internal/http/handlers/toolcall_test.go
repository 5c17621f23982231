package handlers

import (
	"encoding/json"
	"testing"
)

func TestParseToolInvocationNestedFunction(t *testing.T) {
	body := []byte(`{
		"message": {
			"type": "tool-calls",
			"toolCalls": [{
				"id": "call_abc",
				"function": {
					"name": "check_availability",
					"arguments": {"start_time": "2026-06-13T18:00:00", "is_event": true}
				}
			}],
			"call": {"customer": {"number": "+15551234567", "name": "Sarah"}}
		}
	}`)
	var env toolCallEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	inv, ok := parseToolInvocation(&env)
	if !ok {
		t.Fatal("expected a tool invocation")
	}
	if inv.ID != "call_abc" || inv.Name != "check_availability" {
		t.Fatalf("unexpected invocation %+v", inv)
	}
	if inv.CallerPhone != "+15551234567" || inv.CallerName != "Sarah" {
		t.Fatalf("caller not extracted: %+v", inv)
	}
	if got := argString(inv.Args, "start_time"); got != "2026-06-13T18:00:00" {
		t.Fatalf("start_time = %q", got)
	}
	if !argBool(inv.Args, "is_event") {
		t.Fatal("is_event should be true")
	}
}

func TestParseToolInvocationStringEncodedArguments(t *testing.T) {
	body := []byte(`{
		"message": {
			"toolCallList": [{
				"id": "call_2",
				"name": "book_appointment",
				"arguments": "{\"customer_name\": \"Sarah Johnson\", \"guest_count\": \"100\"}"
			}],
			"customer": {"number": "+15550001111"}
		}
	}`)
	var env toolCallEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	inv, ok := parseToolInvocation(&env)
	if !ok {
		t.Fatal("expected a tool invocation")
	}
	if inv.Name != "book_appointment" {
		t.Fatalf("name = %q", inv.Name)
	}
	if got := argString(inv.Args, "customer_name"); got != "Sarah Johnson" {
		t.Fatalf("customer_name = %q", got)
	}
	if got := argInt(inv.Args, "guest_count"); got != 100 {
		t.Fatalf("guest_count = %d", got)
	}
	if inv.CallerPhone != "+15550001111" {
		t.Fatalf("fallback caller number = %q", inv.CallerPhone)
	}
}

func TestParseToolInvocationEmpty(t *testing.T) {
	var env toolCallEnvelope
	if _, ok := parseToolInvocation(&env); ok {
		t.Fatal("empty envelope should not produce an invocation")
	}
}

func TestArgBoolForms(t *testing.T) {
	args := map[string]any{"a": true, "b": "true", "c": "1", "d": "false", "e": 0}
	for _, key := range []string{"a", "b", "c"} {
		if !argBool(args, key) {
			t.Errorf("argBool(%q) = false, want true", key)
		}
	}
	for _, key := range []string{"d", "e", "missing"} {
		if argBool(args, key) {
			t.Errorf("argBool(%q) = true, want false", key)
		}
	}
}

func TestParseDollarsToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1897.50", 189750, false},
		{"$1,897.50", 189750, false},
		{"2500", 250000, false},
		{"35.5", 3550, false},
		{"0.99", 99, false},
		{"", 0, true},
		{"-50", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := parseDollarsToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseDollarsToCents(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDollarsToCents(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDollarsToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
