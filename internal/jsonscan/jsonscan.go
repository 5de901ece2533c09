// Package jsonscan recovers JSON values from text that is not itself valid
// JSON: balanced-brace scanning and "||"-delimited segment splitting.
package jsonscan

import (
	"encoding/json"
	"strings"
)

// ScanObjects returns every top-level balanced {...} span in s, in order.
// Braces inside double-quoted strings (with backslash escapes) are ignored.
// Spans are not validated, and an unterminated span at end of input is
// dropped.
func ScanObjects(s string) []string {
	var out []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				out = append(out, s[start:i+1])
				start = -1
			}
		}
	}
	return out
}

// ParseObject decodes s as a JSON object.
func ParseObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// ParseValue decodes s as any JSON value.
func ParseValue(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// ParseEmbedded decodes s only when it looks like encoded JSON: after
// trimming it must start with '{', '[' or '"'.
func ParseEmbedded(s string) (any, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, false
	}
	switch t[0] {
	case '{', '[', '"':
		return ParseValue(t)
	}
	return nil, false
}
