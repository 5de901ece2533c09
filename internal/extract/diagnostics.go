package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/libgest/internal/jsonscan"
)

const (
	maxKeys        = 16
	maxPreview     = 160
	maxSegments    = 16
	segmentPreview = 40
)

// Diagnostics describes a document that failed extraction.
type Diagnostics struct {
	Source   any                // Original input, text or tree
	Root     any                // Decoded root, when Parsed
	Parsed   bool               // Whether the input decoded as JSON
	Segments *jsonscan.Segments // Pipe segments, when splitting was attempted
}

// String renders a single bounded line, for example
//
//	sourceType=string root=none preview="{\"type\":..." segments=[0:object{type} type=DOCHEAD 1:string"abc"]
func (d Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sourceType=%s root=", kindOf(d.Source))
	if d.Parsed {
		b.WriteString(kindOf(d.Root))
	} else {
		b.WriteString("none")
	}
	if obj, ok := d.Root.(map[string]any); ok && d.Parsed {
		keys := sortedKeys(obj)
		if len(keys) > maxKeys {
			keys = keys[:maxKeys]
		}
		fmt.Fprintf(&b, " keys=[%s]", strings.Join(keys, ","))
	}
	fmt.Fprintf(&b, " preview=%q", preview(d.Source, maxPreview))
	if d.Segments != nil {
		b.WriteString(" segments=[")
		b.WriteString(summarizeSegments(*d.Segments))
		b.WriteString("]")
	}
	return b.String()
}

func summarizeSegments(segs jsonscan.Segments) string {
	n := len(segs.Parsed)
	shown := min(n, maxSegments)
	parts := make([]string, 0, shown+1)
	for i := 0; i < shown; i++ {
		parts = append(parts, fmt.Sprintf("%d:%s", i, summarizeValue(segs.Parsed[i])))
	}
	if n > shown {
		parts = append(parts, fmt.Sprintf("+%d more", n-shown))
	}
	return strings.Join(parts, " ")
}

func summarizeValue(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("string%q", preview(t, segmentPreview))
	case []any:
		return fmt.Sprintf("array(%d)", len(t))
	case map[string]any:
		keys := sortedKeys(t)
		if len(keys) > maxKeys {
			keys = keys[:maxKeys]
		}
		s := "object{" + strings.Join(keys, ",") + "}"
		if typ, ok := t["type"].(string); ok {
			s += " type=" + typ
		}
		if dt, ok := t["docType"].(string); ok {
			s += " docType=" + dt
		}
		return s
	}
	return kindOf(v)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// preview collapses whitespace runs and truncates to limit runes.
func preview(v any, limit int) string {
	s, ok := v.(string)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(b)
		}
	}
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		s = string(r[:limit])
	}
	return s
}
