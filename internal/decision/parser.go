// Package decision extracts the structured decision from the oracle's free-text reply.
//
// Parsing is permissive: only the action is defaulted here. Every other field
// is read optionally and validated at dispatch.
package decision

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"dahaonode/internal/types"
)

var (
	// ErrNoStructuredPayload means the reply contains no brace-delimited span.
	ErrNoStructuredPayload = errors.New("no JSON object in oracle response")
	// ErrMalformedPayload means the span exists but is not a valid JSON object.
	ErrMalformedPayload = errors.New("malformed JSON object in oracle response")
)

// ExtractSpan returns the greedy span from the first '{' to the last '}'.
func ExtractSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// Parse locates and decodes the decision object in text.
func Parse(text string) (types.Decision, error) {
	span, ok := ExtractSpan(text)
	if !ok {
		return types.Decision{}, ErrNoStructuredPayload
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	d := types.Decision{
		Reasoning:          fieldText(fields["reasoning"]),
		Action:             types.Action(fieldText(fields["action"])),
		TargetDiscussionID: fieldText(fields["target_discussion_id"]),
		TargetNumber:       number(fields["target_number"]),
		Title:              fieldText(fields["title"]),
		Content:            fieldText(fields["content"]),
		Vote:               types.Vote(fieldText(fields["vote"])),
	}
	if d.Action == "" {
		d.Action = types.ActionDoNothing
	}
	return d, nil
}

// fieldText renders a field as text. Strings are unquoted, null and absent are
// empty, and any other JSON value keeps its literal form.
func fieldText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// number accepts an integral JSON number or a numeric string.
func number(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil
		}
		n := int(f)
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}
