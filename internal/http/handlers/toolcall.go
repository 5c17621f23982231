package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ----- Voice platform tool-call wire format -----

// toolCallEnvelope is the webhook body the voice platform posts when the
// assistant invokes one of our tools mid-call. Two list spellings exist in
// the wild (toolCalls and toolCallList); we accept both and take the first
// entry.
type toolCallEnvelope struct {
	Message struct {
		Type         string     `json:"type"`
		ToolCalls    []toolCall `json:"toolCalls"`
		ToolCallList []toolCall `json:"toolCallList"`
		Call         struct {
			Customer callerInfo `json:"customer"`
			Duration  any       `json:"duration"`
			EndReason string    `json:"endedReason"`
		} `json:"call"`
		Customer        callerInfo `json:"customer"`
		Summary         string     `json:"summary"`
		Transcript      string     `json:"transcript"`
		DurationSeconds float64    `json:"durationSeconds"`
	} `json:"message"`
}

type callerInfo struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// toolCall is one tool invocation. Arguments arrive either nested under
// function (OpenAI style) or flattened, and either as a JSON object or as a
// JSON-encoded string.
type toolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Function  struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// toolInvocation is the normalized form handlers dispatch on.
type toolInvocation struct {
	ID          string
	Name        string
	Args        map[string]any
	CallerPhone string
	CallerName  string
}

// parseToolInvocation extracts the first tool call from the envelope.
func parseToolInvocation(env *toolCallEnvelope) (toolInvocation, bool) {
	calls := env.Message.ToolCalls
	if len(calls) == 0 {
		calls = env.Message.ToolCallList
	}
	if len(calls) == 0 {
		return toolInvocation{}, false
	}

	tc := calls[0]
	inv := toolInvocation{ID: tc.ID}
	if tc.Function.Name != "" {
		inv.Name = tc.Function.Name
		inv.Args = decodeArgs(tc.Function.Arguments)
	} else {
		inv.Name = tc.Name
		inv.Args = decodeArgs(tc.Arguments)
	}

	inv.CallerPhone = env.Message.Call.Customer.Number
	if inv.CallerPhone == "" {
		inv.CallerPhone = env.Message.Customer.Number
	}
	inv.CallerName = env.Message.Call.Customer.Name
	if inv.CallerName == "" {
		inv.CallerName = env.Message.Customer.Name
	}
	return inv, inv.Name != ""
}

// decodeArgs tolerates both an arguments object and a JSON string holding
// one.
func decodeArgs(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	args := map[string]any{}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		inner := map[string]any{}
		if err := json.Unmarshal([]byte(encoded), &inner); err == nil {
			return inner
		}
	}
	return map[string]any{}
}

// argString returns the first non-empty string value among keys.
func argString(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// argBool reads a boolean argument, accepting real booleans and the string
// forms LLMs sometimes emit.
func argBool(args map[string]any, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true") || t == "1"
	}
	return false
}

// argInt reads an integer argument from number or string form.
func argInt(args map[string]any, keys ...string) int {
	for _, k := range keys {
		v, ok := args[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return n
			}
		}
	}
	return 0
}

// toolResult is the response body the platform speaks from. The result is
// always exactly one natural-language string.
type toolResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

type toolResultsBody struct {
	Results []toolResult `json:"results"`
}

func writeToolResult(w http.ResponseWriter, toolCallID, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toolResultsBody{
		Results: []toolResult{{ToolCallID: toolCallID, Result: text}},
	})
}

// parseDollarsToCents converts a spoken-number dollar amount ("1897.50",
// "$1,897.50") to cents.
func parseDollarsToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
	}
	if dollars < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return dollars*100 + cents, nil
}
