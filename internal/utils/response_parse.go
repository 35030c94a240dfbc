package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject returns the outermost {...} span of raw model output.
func ExtractJSONObject(raw string) (string, bool) {
	return extractSpan(raw, '{', '}')
}

// ExtractJSONArray returns the outermost [...] span of raw model output.
func ExtractJSONArray(raw string) (string, bool) {
	return extractSpan(raw, '[', ']')
}

func extractSpan(raw string, open, close byte) (string, bool) {
	clean := stripCodeFence(strings.TrimSpace(raw))
	start := strings.IndexByte(clean, open)
	end := strings.LastIndexByte(clean, close)
	if start < 0 || end <= start {
		return "", false
	}
	return clean[start : end+1], true
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

// ParseJSONObject decodes the object embedded in raw into out.
func ParseJSONObject(raw string, out any) error {
	span, ok := ExtractJSONObject(raw)
	if !ok {
		return fmt.Errorf("no json object in model output")
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		return fmt.Errorf("failed to parse json object: %w", err)
	}
	return nil
}

// ParseJSONList decodes a list of T from raw. The list may be a bare array or wrapped in an
// object under key.
func ParseJSONList[T any](raw, key string) ([]T, error) {
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		span, _ := ExtractJSONArray(raw)
		var items []T
		if err := json.Unmarshal([]byte(span), &items); err != nil {
			return nil, fmt.Errorf("failed to parse json array: %w", err)
		}
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := ParseJSONObject(raw, &wrapper); err != nil {
		return nil, err
	}
	inner, ok := wrapper[key]
	if !ok {
		return nil, fmt.Errorf("missing %q in model output", key)
	}
	var items []T
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return items, nil
}
