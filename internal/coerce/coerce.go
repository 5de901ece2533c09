// Package coerce converts loosely typed JSON values into scalars.
//
// Host documents carry numbers as numbers or numeric strings, booleans as
// booleans, "1"/"0" or "true"/"false", and blank strings where a value is
// absent. Every reader in this module goes through these helpers so the
// defaults stay consistent.
package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Record returns v as an object when it is one.
func Record(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// IsNumber reports whether v is a finite JSON number, without parsing strings.
func IsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && !math.IsInf(f, 0)
	}
	return 0, false
}

// Number returns v as a finite number. Strings are parsed by their leading
// numeric prefix ("12.5mm" is 12.5). Anything else yields fallback.
func Number(v any, fallback float64) float64 {
	if n, ok := IsNumber(v); ok {
		return n
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(n, 0) {
		return fallback
	}
	return n
}

// Integer rounds Number(v, fallback) half away from zero.
func Integer(v any, fallback int) int {
	return int(math.Round(Number(v, float64(fallback))))
}

// String returns v when it is a string with non-whitespace content.
// The value is returned untrimmed.
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// StringOr returns String(v) or fallback.
func StringOr(v any, fallback string) string {
	if s, ok := String(v); ok {
		return s
	}
	return fallback
}

// Bool accepts booleans and the strings/numbers "true", "false", "1", "0"
// (case-insensitive). nil and anything unrecognized yield fallback.
func Bool(v any, fallback bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return fallback
	case string:
		return boolText(b, fallback)
	}
	if n, ok := IsNumber(v); ok {
		return boolText(FormatNumber(n), fallback)
	}
	return fallback
}

func boolText(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return fallback
}

// Truthy applies loose truthiness: false, 0, "", nil and NaN are false,
// everything else (including empty objects and arrays) is true.
func Truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}
	if n, ok := v.(float64); ok {
		return n != 0 && !math.IsNaN(n)
	}
	if n, ok := IsNumber(v); ok {
		return n != 0
	}
	return true
}

// Text renders a scalar the way it would appear when interpolated into a
// shape line. nil renders as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if n, ok := IsNumber(v); ok {
		return FormatNumber(n)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// FormatNumber prints the shortest representation that round-trips, with
// negative zero printed as "0" and exponent form only for very large or very
// small magnitudes.
func FormatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	if math.IsNaN(n) {
		return "NaN"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		// 1e+21 style: drop the leading zero in the exponent that Go emits.
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return s
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FlagDigit renders a boolean as "1" or "0".
func FlagDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
