package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed is returned when no JSON object can be decoded from content.
var ErrParseFailed = errors.New("failed to parse response")

// ExtractObject returns the span from the first '{' to the last '}' in
// content. Surrounding prose and markdown fences are discarded. The match
// is greedy: two separate objects in one response yield a span that does
// not decode.
func ExtractObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// Parse decodes the JSON object embedded in content into T.
func Parse[T any](content string) (T, error) {
	var result T

	obj, ok := ExtractObject(content)
	if !ok {
		return result, fmt.Errorf("%w: no JSON object found", ErrParseFailed)
	}

	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	return result, nil
}
