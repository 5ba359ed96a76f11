// Package formatting provides parsing helpers for human-readable sizes,
// model output, and inline image payloads.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

var sizePattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// Size is a byte count that decodes from strings such as "15MB" or "512 KB".
// It implements encoding.TextUnmarshaler so it can be declared directly in
// TOML-backed configuration structs.
type Size int64

// ParseBytes parses a human-readable byte size (base-1024 units B through TB).
// A bare number is treated as bytes. Units are case-insensitive.
func ParseBytes(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		return Size(value), nil
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return Size(value * math.Pow(1024, float64(idx))), nil
}

// Bytes returns the size as an int64 byte count.
func (s Size) Bytes() int64 {
	return int64(s)
}

// String renders the size with the largest whole unit, e.g. "15 MB".
func (s Size) String() string {
	if s <= 0 {
		return "0 B"
	}

	i := int(math.Floor(math.Log(float64(s)) / math.Log(1024)))
	i = min(i, len(units)-1)

	v := float64(s) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

// UnmarshalText decodes a size from its textual form.
func (s *Size) UnmarshalText(text []byte) error {
	v, err := ParseBytes(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText renders the size in its textual form.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(s.String(), " ", "")), nil
}
