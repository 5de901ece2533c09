package v3

import (
	"strconv"
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
)

// BuildSymbolShapes emits one legacy shape line per PIN, RECT, CIRCLE,
// ELLIPSE, LINE, POLY and TEXT record. Other record types are ignored.
func BuildSymbolShapes(recs []Record) []string {
	attrs := pinAttributes(recs)

	var shapes []string
	for _, r := range recs {
		var line string
		switch r.Outer.Type {
		case "PIN":
			line = pinLine(r, attrs[r.Outer.ID], len(shapes)+1)
		case "RECT":
			line = rectLine(r)
		case "CIRCLE":
			line = circleLine(r)
		case "ELLIPSE":
			line = ellipseLine(r)
		case "LINE":
			line = polylineLine(r)
		case "POLY":
			line = polygonLine(r)
		case "TEXT":
			line = textLine(r)
		}
		if line != "" {
			shapes = append(shapes, line)
		}
	}
	return shapes
}

// pinAttributes indexes ATTR records by parentId, with upper-cased keys.
func pinAttributes(recs []Record) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, r := range recs {
		if r.Outer.Type != "ATTR" {
			continue
		}
		parent, ok := coerce.String(r.Inner["parentId"])
		if !ok {
			continue
		}
		key, ok := coerce.String(r.Inner["key"])
		if !ok {
			continue
		}
		dict := out[parent]
		if dict == nil {
			dict = make(map[string]string)
			out[parent] = dict
		}
		dict[strings.ToUpper(key)] = coerce.StringOr(r.Inner["value"], "")
	}
	return out
}

func pinLine(r Record, attrs map[string]string, index int) string {
	in := r.Inner
	if !coerce.Bool(in["display"], true) {
		return ""
	}
	id := r.Outer.ID
	name := sanitize(attrs["NAME"])
	number := sanitize(attrs["NUMBER"])

	rotation := coerce.Integer(in["rotation"], 0)
	length := coerce.Number(in["length"], 100)
	pinShape := strings.ToUpper(coerce.StringOr(in["pinShape"], "NONE"))
	hasDot := strings.Contains(pinShape, "INVERTED")
	hasClock := strings.Contains(pinShape, "CLOCK")

	path := "M 0 0 h " + num(length)
	if rotation == 90 || rotation == 270 {
		path = "M 0 0 v " + num(length)
	}

	shown := number
	if shown == "" {
		shown = strconv.Itoa(index)
	}
	label := name
	if label == "" {
		label = number
	}

	settings := strings.Join([]string{
		"P", "1", "0", shown,
		num(coerce.Number(in["x"], 0)),
		num(coerce.Number(in["y"], 0)),
		strconv.Itoa(rotation), id, locked(in),
	}, "~")
	return strings.Join([]string{
		settings,
		"",
		path,
		"1~0~0~0~" + label + "~7",
		"1~0~0~0~" + number + "~7",
		coerce.FlagDigit(hasDot) + "~0~0",
		coerce.FlagDigit(hasClock) + "~",
	}, "^^")
}

func rectLine(r Record) string {
	in := r.Inner
	x1 := coerce.Number(in["dotX1"], coerce.Number(in["x"], 0))
	y1 := coerce.Number(in["dotY1"], coerce.Number(in["y"], 0))
	x2 := coerce.Number(in["dotX2"], x1)
	y2 := coerce.Number(in["dotY2"], y1)
	return strings.Join([]string{
		"R",
		num(min(x1, x2)), num(min(y1, y2)),
		num(coerce.Number(in["radiusX"], 0)), num(coerce.Number(in["radiusY"], 0)),
		num(abs(x2 - x1)), num(abs(y2 - y1)),
		strokeColor(in["strokeColor"]), num(coerce.Number(in["strokeWidth"], 1)), "",
		fillColor(in["fillColor"]), r.Outer.ID, locked(in),
	}, "~")
}

func circleLine(r Record) string {
	in := r.Inner
	return strings.Join([]string{
		"C",
		num(coerce.Number(in["centerX"], 0)), num(coerce.Number(in["centerY"], 0)),
		num(coerce.Number(in["radius"], 0)),
		strokeColor(in["strokeColor"]), num(coerce.Number(in["strokeWidth"], 1)), "",
		fillColor(in["fillColor"]), r.Outer.ID, locked(in),
	}, "~")
}

func ellipseLine(r Record) string {
	in := r.Inner
	return strings.Join([]string{
		"E",
		num(coerce.Number(in["centerX"], 0)), num(coerce.Number(in["centerY"], 0)),
		num(coerce.Number(in["radiusX"], 0)), num(coerce.Number(in["radiusY"], 0)),
		strokeColor(in["strokeColor"]), num(coerce.Number(in["strokeWidth"], 1)), "",
		fillColor(in["fillColor"]), r.Outer.ID, locked(in),
	}, "~")
}

func polylineLine(r Record) string {
	in := r.Inner
	points := strings.Join([]string{
		num(coerce.Number(in["startX"], 0)), num(coerce.Number(in["startY"], 0)),
		num(coerce.Number(in["endX"], 0)), num(coerce.Number(in["endY"], 0)),
	}, " ")
	return strings.Join([]string{
		"PL", points,
		strokeColor(in["strokeColor"]), num(coerce.Number(in["strokeWidth"], 1)), "",
		fillColor(in["fillColor"]), r.Outer.ID, locked(in),
	}, "~")
}

func polygonLine(r Record) string {
	in := r.Inner
	points := flatPoints(in["points"])
	if points == "" {
		return ""
	}
	return strings.Join([]string{
		"PG", points,
		strokeColor(in["strokeColor"]), num(coerce.Number(in["strokeWidth"], 1)), "",
		fillColor(in["fillColor"]), r.Outer.ID, locked(in),
	}, "~")
}

func textLine(r Record) string {
	in := r.Inner
	raw, ok := coerce.String(in["text"])
	if !ok {
		raw = coerce.StringOr(in["title"], "")
	}
	text := sanitize(raw)
	if text == "" {
		return ""
	}

	alignKey, ok := coerce.String(in["align"])
	if !ok {
		alignKey = coerce.StringOr(in["hAlign"], "")
	}
	align := "L"
	switch alignKey = strings.ToUpper(alignKey); {
	case strings.HasPrefix(alignKey, "RIGHT"):
		align = "R"
	case strings.HasPrefix(alignKey, "CENTER"):
		align = "C"
	}

	return strings.Join([]string{
		"T", align,
		num(coerce.Number(in["x"], 0)), num(coerce.Number(in["y"], 0)),
		num(coerce.Number(in["rotation"], 0)),
		strokeColor(in["color"]), "",
		num(coerce.Number(in["fontSize"], 7)), "", "", "",
		sanitize(coerce.StringOr(in["textType"], "comment")),
		text, "1", "start", r.Outer.ID, locked(in),
	}, "~")
}

func abs(n float64) float64 {
	if n < 0 {
		return -n
	}
	return n
}
