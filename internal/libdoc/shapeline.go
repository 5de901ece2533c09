package libdoc

import (
	"encoding/json"
	"strings"
)

// JSONShapePrefix marks a shape line whose payload is a serialized JSON
// shape object rather than positional legacy fields.
const JSONShapePrefix = "__JSON__"

// ShapeLine is either a legacy positional line or a raw JSON shape object.
// Lines decoded from text keep that text so they serialize back unchanged.
type ShapeLine struct {
	text string
	raw  map[string]any
}

// LegacyLine wraps a positional shape line.
func LegacyLine(text string) ShapeLine {
	return ShapeLine{text: text}
}

// RawShape wraps a JSON shape object. Its wire form is the sentinel prefix
// followed by the serialized object.
func RawShape(obj map[string]any) ShapeLine {
	return ShapeLine{raw: obj}
}

// ParseShapeLine classifies one wire line. Lines carrying the sentinel prefix
// or starting with "{" become raw shapes when they decode to a JSON object;
// anything else, including undecodable JSON, stays legacy.
func ParseShapeLine(text string) ShapeLine {
	payload, sentinel := strings.CutPrefix(text, JSONShapePrefix)
	if !sentinel && !strings.HasPrefix(text, "{") {
		return ShapeLine{text: text}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil || obj == nil {
		return ShapeLine{text: text}
	}
	return ShapeLine{text: text, raw: obj}
}

// ParseShapeLines applies ParseShapeLine to every line.
func ParseShapeLines(lines []string) []ShapeLine {
	out := make([]ShapeLine, len(lines))
	for i, l := range lines {
		out[i] = ParseShapeLine(l)
	}
	return out
}

// IsRaw reports whether the line carries a JSON shape object.
func (l ShapeLine) IsRaw() bool {
	return l.raw != nil
}

// Object returns the JSON shape object of a raw line.
func (l ShapeLine) Object() (map[string]any, bool) {
	return l.raw, l.raw != nil
}

// String returns the wire form.
func (l ShapeLine) String() string {
	if l.text != "" || l.raw == nil {
		return l.text
	}
	b, err := json.Marshal(l.raw)
	if err != nil {
		return JSONShapePrefix + "{}"
	}
	return JSONShapePrefix + string(b)
}

// Tag returns the leading type tag of a legacy line ("P", "PAD", ...).
func (l ShapeLine) Tag() string {
	if l.raw != nil {
		return ""
	}
	tag, _, _ := strings.Cut(l.text, "~")
	return tag
}
