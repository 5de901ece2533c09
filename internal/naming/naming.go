// Package naming derives file-safe names and LCSC part identifiers for
// exported components.
package naming

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	maxFileName   = 180
	shortUUIDLen  = 6
	defaultPrefix = "U"
)

var (
	unsafeChars  = regexp.MustCompile(`[^\w.-]`)
	prefixLetter = regexp.MustCompile(`^[A-Za-z]+`)
	lcscID       = regexp.MustCompile(`^[Cc]\d+$`)
	lcscInText   = regexp.MustCompile(`C\d+`)
	nonHex       = regexp.MustCompile(`[^a-fA-F0-9]`)
)

// SanitizeName replaces every character outside [A-Za-z0-9_.-] with "_".
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// SanitizeFileName sanitizes name, strips leading underscores and caps the
// length. An empty result becomes "export".
func SanitizeFileName(name string) string {
	s := strings.TrimLeft(SanitizeName(name), "_")
	if len(s) > maxFileName {
		s = s[:maxFileName]
	}
	if s == "" {
		return "export"
	}
	return s
}

// ExtractPrefix returns the leading letters of a reference designator,
// uppercased ("r12" -> "R"). It defaults to "U".
func ExtractPrefix(designator string) string {
	m := prefixLetter.FindString(strings.TrimSpace(designator))
	if m == "" {
		return defaultPrefix
	}
	return strings.ToUpper(m)
}

// IsLCSCID reports whether s is a supplier part number such as "C2040".
func IsLCSCID(s string) bool {
	return lcscID.MatchString(strings.TrimSpace(s))
}

func NormalizeLCSCID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FirstLCSCID returns the first candidate that is an LCSC id, normalized.
func FirstLCSCID(candidates ...string) string {
	for _, c := range candidates {
		if IsLCSCID(c) {
			return NormalizeLCSCID(c)
		}
	}
	return ""
}

// ExtractLCSCIDs finds every distinct LCSC id in free text, in order of first
// appearance.
func ExtractLCSCIDs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range lcscInText.FindAllString(strings.ToUpper(text), -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// ShortenUUID keeps the last six hex digits of a UUID, lowercased.
func ShortenUUID(uuid string) string {
	cleaned := strings.ToLower(nonHex.ReplaceAllString(uuid, ""))
	if len(cleaned) <= shortUUIDLen {
		return cleaned
	}
	return cleaned[len(cleaned)-shortUUIDLen:]
}

// FormatTimestamp renders t as yyyymmdd_hhmmss in t's location.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// NameSet hands out names that are unique within the set.
type NameSet map[string]struct{}

// Unique returns base, or base_2, base_3, ... if taken, and reserves it.
func (s NameSet) Unique(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := s[name]; !taken {
			break
		}
		name = base + "_" + strconv.Itoa(i)
	}
	s[name] = struct{}{}
	return name
}
