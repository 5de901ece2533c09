package merge

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
	"github.com/dgallion1/libgest/internal/shape"
)

type symbolHint struct {
	name  string
	match func(map[string]any) bool
	apply func(*shape.Symbol, map[string]any)
}

type footprintHint struct {
	name  string
	match func(map[string]any) bool
	apply func(*shape.Footprint, map[string]any)
}

// symbolHints are all evaluated; every match contributes.
var symbolHints = []symbolHint{
	{"text", hasSymbolText, addSymbolText},
	{"circle", numeric("centerX", "centerY", "radius"), addSymbolCircle},
	{"rectangle", numeric("x", "y", "width", "height"), addSymbolRectangle},
	{"pin", hasPinHint, addPin},
}

// footprintHints are evaluated in order; the first match wins. An object
// that matches both pad and circle is a pad.
var footprintHints = []footprintHint{
	{"pad", isPad, addPad},
	{"track", isTrack, addTrack},
	{"hole", isHole, addHole},
	{"via", numeric("centerX", "centerY", "diameter"), addVia},
	{"circle", numeric("centerX", "centerY", "radius"), addFootprintCircle},
	{"arc", hasPath, addArc},
	{"rect", numeric("x", "y", "width", "height"), addRect},
	{"text", hasFootprintText, addFootprintText},
}

func numeric(keys ...string) func(map[string]any) bool {
	return func(obj map[string]any) bool {
		for _, k := range keys {
			if _, ok := coerce.IsNumber(obj[k]); !ok {
				return false
			}
		}
		return true
	}
}

func typeTag(obj map[string]any) string {
	return strings.ToUpper(coerce.Text(obj["type"]))
}

func str(obj map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := coerce.String(obj[k]); ok {
			return s, true
		}
	}
	return "", false
}

func strOr(obj map[string]any, fallback string, keys ...string) string {
	if s, ok := str(obj, keys...); ok {
		return s
	}
	return fallback
}

// num reads key, then each alternate key, then fallback.
func num(obj map[string]any, fallback float64, keys ...string) float64 {
	for i := len(keys) - 1; i >= 0; i-- {
		fallback = coerce.Number(obj[keys[i]], fallback)
	}
	return fallback
}

func layer(obj map[string]any, fallback int) int {
	return coerce.Integer(obj["layerId"], fallback)
}

// Symbol domain.

func hasSymbolText(obj map[string]any) bool {
	_, ok := str(obj, "title", "text", "name")
	return ok
}

func addSymbolText(s *shape.Symbol, obj map[string]any) {
	text, _ := str(obj, "title", "text", "name")
	s.Texts = append(s.Texts, shape.Text{
		X:        num(obj, 0, "x", "centerX"),
		Y:        num(obj, 0, "y", "centerY"),
		Rotation: num(obj, 0, "rotation"),
		FontSize: num(obj, 7, "fontSize"),
		Text:     text,
		Color:    strOr(obj, "#000000", "color"),
		TextType: strOr(obj, "", "type"),
		ID:       strOr(obj, "", "id"),
	})
}

func addSymbolCircle(s *shape.Symbol, obj map[string]any) {
	s.Circles = append(s.Circles, shape.Circle{
		CX:          num(obj, 0, "centerX"),
		CY:          num(obj, 0, "centerY"),
		Radius:      num(obj, 0, "radius"),
		StrokeWidth: num(obj, 1, "strokeWidth"),
		StrokeColor: strOr(obj, "#000000", "strokeColor"),
		FillColor:   strOr(obj, "none", "fillColor"),
		ID:          strOr(obj, "", "id"),
	})
}

func addSymbolRectangle(s *shape.Symbol, obj map[string]any) {
	s.Rectangles = append(s.Rectangles, shape.Rectangle{
		X:           num(obj, 0, "x"),
		Y:           num(obj, 0, "y"),
		RX:          num(obj, 0, "radiusX"),
		RY:          num(obj, 0, "radiusY"),
		Width:       num(obj, 0, "width"),
		Height:      num(obj, 0, "height"),
		StrokeColor: strOr(obj, "#000000", "strokeColor"),
		StrokeWidth: num(obj, 1, "strokeWidth"),
		FillColor:   strOr(obj, "none", "fillColor"),
		ID:          strOr(obj, "", "id"),
	})
}

func hasPinHint(obj map[string]any) bool {
	switch typeTag(obj) {
	case "PART", "PIN":
		return true
	}
	if _, ok := obj["pinNumber"].(string); ok {
		return true
	}
	if _, ok := obj["number"].(string); ok {
		return true
	}
	return numeric("dotX1", "dotX2")(obj)
}

// addPin skips objects that duplicate an existing pin's number and position.
func addPin(s *shape.Symbol, obj map[string]any) {
	x := num(obj, 0, "x", "dotX1", "centerX")
	y := num(obj, 0, "y", "dotY1", "centerY")
	number := strOr(obj, strconv.Itoa(len(s.Pins)+1), "pinNumber", "number")
	if s.FindPin(number, x, y) >= 0 {
		return
	}
	s.Pins = append(s.Pins, shape.Pin{
		Number:         number,
		Name:           strOr(obj, number, "name", "title"),
		ElectricalType: "0",
		X:              x,
		Y:              y,
		Rotation:       num(obj, 0, "rotation"),
		HasDot:         coerce.Truthy(obj["hasDot"]) || coerce.Truthy(obj["inverted"]),
		HasClock:       coerce.Truthy(obj["hasClock"]) || coerce.Truthy(obj["clock"]),
		PinLength:      math.Max(math.Abs(num(obj, 0, "dotX2")-num(obj, 0, "dotX1")), 100),
		ID:             strOr(obj, "", "id"),
	})
}

// Footprint domain.

func isPad(obj map[string]any) bool {
	return typeTag(obj) == "PAD" || numeric("centerX", "centerY", "width", "height")(obj)
}

func addPad(f *shape.Footprint, obj map[string]any) {
	holeRadius := num(obj, 0, "holeRadius")
	plated := holeRadius > 0
	if v, ok := obj["isPlated"]; ok && v != nil {
		plated = coerce.Truthy(v)
	}
	f.Pads = append(f.Pads, shape.Pad{
		Shape:      strOr(obj, "RECT", "shape"),
		CenterX:    num(obj, 0, "centerX"),
		CenterY:    num(obj, 0, "centerY"),
		Width:      num(obj, 1, "width"),
		Height:     num(obj, 1, "height"),
		LayerID:    layer(obj, 1),
		Net:        strOr(obj, "", "net"),
		Number:     strOr(obj, strconv.Itoa(len(f.Pads)+1), "number", "padNumber"),
		HoleRadius: holeRadius,
		Points:     strOr(obj, "", "points"),
		Rotation:   num(obj, 0, "rotation"),
		ID:         strOr(obj, "", "id"),
		HoleLength: num(obj, 0, "holeLength"),
		HolePoint:  strOr(obj, "", "holePoint"),
		IsPlated:   plated,
		IsLocked:   coerce.Truthy(obj["isLocked"]),
	})
}

func isTrack(obj map[string]any) bool {
	_, ok := obj["points"].(string)
	return typeTag(obj) == "TRACK" && ok
}

func addTrack(f *shape.Footprint, obj map[string]any) {
	f.Tracks = append(f.Tracks, shape.Track{
		StrokeWidth: num(obj, 0.1, "strokeWidth"),
		LayerID:     layer(obj, 1),
		Net:         strOr(obj, "", "net"),
		Points:      obj["points"].(string),
		ID:          strOr(obj, "", "id"),
		IsLocked:    coerce.Truthy(obj["isLocked"]),
	})
}

func isHole(obj map[string]any) bool {
	return typeTag(obj) == "HOLE" && numeric("centerX", "centerY")(obj)
}

func addHole(f *shape.Footprint, obj map[string]any) {
	f.Holes = append(f.Holes, shape.Hole{
		CenterX:  num(obj, 0, "centerX"),
		CenterY:  num(obj, 0, "centerY"),
		Radius:   num(obj, 0.1, "radius"),
		ID:       strOr(obj, "", "id"),
		IsLocked: coerce.Truthy(obj["isLocked"]),
	})
}

func addVia(f *shape.Footprint, obj map[string]any) {
	diameter := num(obj, 0, "diameter")
	f.Vias = append(f.Vias, shape.Via{
		CenterX:  num(obj, 0, "centerX"),
		CenterY:  num(obj, 0, "centerY"),
		Diameter: diameter,
		Net:      strOr(obj, "", "net"),
		Radius:   num(obj, diameter/2, "radius"),
		ID:       strOr(obj, "", "id"),
		IsLocked: coerce.Truthy(obj["isLocked"]),
	})
}

func addFootprintCircle(f *shape.Footprint, obj map[string]any) {
	f.Circles = append(f.Circles, shape.FootprintCircle{
		CX:          num(obj, 0, "centerX"),
		CY:          num(obj, 0, "centerY"),
		Radius:      num(obj, 0, "radius"),
		StrokeWidth: num(obj, 0.1, "strokeWidth"),
		LayerID:     layer(obj, 21),
		ID:          strOr(obj, "", "id"),
		IsLocked:    coerce.Truthy(obj["isLocked"]),
	})
}

func hasPath(obj map[string]any) bool {
	_, ok := coerce.String(obj["path"])
	return ok
}

func addArc(f *shape.Footprint, obj map[string]any) {
	f.Arcs = append(f.Arcs, shape.Arc{
		StrokeWidth: num(obj, 0.1, "strokeWidth"),
		LayerID:     layer(obj, 21),
		Net:         strOr(obj, "", "net"),
		Path:        obj["path"].(string),
		HelperDots:  strOr(obj, "", "helperDots"),
		ID:          strOr(obj, "", "id"),
		IsLocked:    coerce.Truthy(obj["isLocked"]),
	})
}

func addRect(f *shape.Footprint, obj map[string]any) {
	f.Rects = append(f.Rects, shape.Rect{
		X:           num(obj, 0, "x"),
		Y:           num(obj, 0, "y"),
		Width:       num(obj, 0, "width"),
		Height:      num(obj, 0, "height"),
		StrokeWidth: num(obj, 0.1, "strokeWidth"),
		ID:          strOr(obj, "", "id"),
		LayerID:     layer(obj, 21),
		IsLocked:    coerce.Truthy(obj["isLocked"]),
	})
}

func hasFootprintText(obj map[string]any) bool {
	_, ok := str(obj, "text", "title")
	return ok
}

func addFootprintText(f *shape.Footprint, obj map[string]any) {
	text, _ := str(obj, "text", "title")
	displayed := true
	if v, ok := obj["isDisplayed"]; ok && v != nil {
		displayed = coerce.Truthy(v)
	}
	f.Texts = append(f.Texts, shape.FootprintText{
		Type:        strOr(obj, "", "textType"),
		CenterX:     num(obj, 0, "x", "centerX"),
		CenterY:     num(obj, 0, "y", "centerY"),
		StrokeWidth: num(obj, 0.1, "strokeWidth"),
		Rotation:    num(obj, 0, "rotation"),
		Mirror:      strOr(obj, "", "mirror"),
		LayerID:     layer(obj, 21),
		Net:         strOr(obj, "", "net"),
		FontSize:    num(obj, 1, "fontSize"),
		Text:        text,
		TextPath:    strOr(obj, "", "textPath"),
		IsDisplayed: displayed,
		ID:          strOr(obj, "", "id"),
		IsLocked:    coerce.Truthy(obj["isLocked"]),
	})
}
