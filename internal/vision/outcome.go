package vision

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/JaimeStill/wastewise/pkg/formatting"
)

const defaultConfidence = 0.5

// Payload is the classification the model returned.
type Payload struct {
	Category      string   `json:"category"`
	DetectedItems []string `json:"detected_items"`
	Confidence    float64  `json:"confidence"`
	Reasoning     string   `json:"reasoning"`
}

// OutcomeKind tags how a model response was interpreted.
type OutcomeKind int

const (
	// Parsed means a JSON object was decoded from the response.
	Parsed OutcomeKind = iota
	// Fallback means no usable object was found and the raw text was kept
	// as reasoning for a General/Mixed Waste payload.
	Fallback
)

func (k OutcomeKind) String() string {
	if k == Fallback {
		return "fallback"
	}
	return "parsed"
}

// Outcome is the result of interpreting a model response. Err carries the
// parse failure for a Fallback outcome.
type Outcome struct {
	Kind    OutcomeKind
	Payload Payload
	Raw     string
	Err     error
}

// ParseResponse extracts the span from the first '{' to the last '}' of text
// and decodes it. It never fails: only text without a decodable object yields
// a Fallback outcome. Field types are coerced rather than rejected: a numeric
// string confidence becomes a number and a lone detected_items string becomes
// a one-item list. Missing or unreadable confidence defaults to 0.5, values
// are clamped to [0,1], and a missing detected_items list becomes empty.
func ParseResponse(text string) Outcome {
	fields, err := formatting.Parse[map[string]json.RawMessage](text)
	if err != nil {
		return fallback(text, err)
	}

	p := Payload{
		Category:      stringField(fields["category"]),
		DetectedItems: itemsField(fields["detected_items"]),
		Confidence:    confidenceField(fields["confidence"]),
		Reasoning:     stringField(fields["reasoning"]),
	}

	return Outcome{Kind: Parsed, Payload: p, Raw: text}
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func itemsField(raw json.RawMessage) []string {
	items := []string{}
	if len(raw) == 0 {
		return items
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if s := strings.TrimSpace(stringField(item)); s != "" {
				items = append(items, s)
			}
		}
		return items
	}

	if s := strings.TrimSpace(stringField(raw)); s != "" {
		items = append(items, s)
	}
	return items
}

func confidenceField(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return defaultConfidence
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return clamp(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return defaultConfidence
	}

	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return defaultConfidence
	}
	if percent {
		n /= 100
	}
	return clamp(n)
}

func fallback(text string, err error) Outcome {
	return Outcome{
		Kind: Fallback,
		Payload: Payload{
			Category:      FallbackCategory,
			DetectedItems: []string{"Unknown item"},
			Confidence:    defaultConfidence,
			Reasoning:     text,
		},
		Raw: text,
		Err: err,
	}
}

func clamp(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return defaultConfidence
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
