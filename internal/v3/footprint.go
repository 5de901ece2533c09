package v3

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
)

const epsilon = 1e-6

// BuildFootprintShapes emits PAD, TRACK (from LINE) and VIA lines. Record
// types without a legacy counterpart are skipped.
func BuildFootprintShapes(recs []Record) []string {
	var shapes []string
	for _, r := range recs {
		switch r.Outer.Type {
		case "PAD":
			shapes = append(shapes, padLine(r))
		case "LINE":
			shapes = append(shapes, trackLine(r))
		case "VIA":
			shapes = append(shapes, viaLine(r))
		}
	}
	return shapes
}

// PadGeometry is the resolved outline and drill of a V3 pad.
type PadGeometry struct {
	Shape      string
	Width      float64
	Height     float64
	Points     string
	HoleRadius float64
	HoleLength float64
}

// ResolvePad applies the pad shape rules: polygon outlines need at least
// three points or fall back to RECT, unequal ellipses become OVAL, and
// unknown shapes become RECT. Rectangular holes yield a radius of half the
// short side and, for slots, a length of the long side.
func ResolvePad(inner map[string]any) PadGeometry {
	def, _ := coerce.Record(inner["defaultPad"])
	g := PadGeometry{
		Shape:  strings.ToUpper(coerce.StringOr(def["padType"], "RECT")),
		Width:  coerce.Number(def["width"], coerce.Number(inner["width"], 0)),
		Height: coerce.Number(def["height"], coerce.Number(inner["height"], 0)),
	}

	if g.Shape == "POLYGON" {
		coords := polygonCoords(def["path"])
		if len(coords) >= 6 {
			vals := make([]string, len(coords))
			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for i, c := range coords {
				vals[i] = num(c)
				if i%2 == 0 {
					minX, maxX = min(minX, c), max(maxX, c)
				} else {
					minY, maxY = min(minY, c), max(maxY, c)
				}
			}
			g.Points = strings.Join(vals, " ")
			g.Width = max(g.Width, maxX-minX)
			g.Height = max(g.Height, maxY-minY)
		} else {
			g.Shape = "RECT"
		}
	}

	if g.Shape == "ELLIPSE" && g.Width > 0 && g.Height > 0 && math.Abs(g.Width-g.Height) > epsilon {
		g.Shape = "OVAL"
	}
	switch g.Shape {
	case "ELLIPSE", "RECT", "OVAL", "POLYGON":
	default:
		g.Shape = "RECT"
	}

	hole, _ := coerce.Record(inner["hole"])
	hw := coerce.Number(hole["width"], 0)
	hh := coerce.Number(hole["height"], 0)
	if hw > 0 && hh > 0 {
		g.HoleRadius = min(hw, hh) / 2
		if math.Abs(hw-hh) > epsilon {
			g.HoleLength = max(hw, hh)
		}
	}
	return g
}

// polygonCoords takes consecutive numeric pairs from a path list, skipping
// single entries that do not start a numeric pair.
func polygonCoords(v any) []float64 {
	path, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []float64
	for i := 0; i < len(path)-1; i++ {
		a, oka := path[i].(float64)
		b, okb := path[i+1].(float64)
		if oka && okb {
			out = append(out, a, b)
			i++
		}
	}
	return out
}

func padLine(r Record) string {
	in := r.Inner
	g := ResolvePad(in)
	number := sanitize(coerce.StringOr(in["num"], ""))
	if number == "" {
		number = r.Outer.ID
	}
	plated := coerce.Bool(in["plated"], g.HoleRadius > 0)

	return strings.Join([]string{
		"PAD", g.Shape,
		num(coerce.Number(in["centerX"], 0)), num(coerce.Number(in["centerY"], 0)),
		num(g.Width), num(g.Height),
		strconv.Itoa(coerce.Integer(in["layerId"], 1)),
		sanitize(coerce.StringOr(in["netName"], "")),
		number,
		num(g.HoleRadius),
		g.Points,
		num(coerce.Number(in["padAngle"], 0)),
		r.Outer.ID,
		num(g.HoleLength),
		"",
		coerce.FlagDigit(plated),
		locked(in),
	}, "~")
}

func trackLine(r Record) string {
	in := r.Inner
	points := strings.Join([]string{
		num(coerce.Number(in["startX"], 0)), num(coerce.Number(in["startY"], 0)),
		num(coerce.Number(in["endX"], 0)), num(coerce.Number(in["endY"], 0)),
	}, " ")
	return strings.Join([]string{
		"TRACK",
		num(coerce.Number(in["width"], coerce.Number(in["strokeWidth"], 0.1))),
		strconv.Itoa(coerce.Integer(in["layerId"], 21)),
		sanitize(coerce.StringOr(in["netName"], "")),
		points, r.Outer.ID, locked(in),
	}, "~")
}

// ViaHoleRadius halves an explicit hole diameter, otherwise takes a quarter
// of the outer diameter.
func ViaHoleRadius(holeDiameter, viaDiameter float64) float64 {
	switch {
	case holeDiameter > 0:
		return holeDiameter / 2
	case viaDiameter > 0:
		return viaDiameter / 4
	}
	return 0
}

func viaLine(r Record) string {
	in := r.Inner
	viaDiameter := coerce.Number(in["viaDiameter"], coerce.Number(in["diameter"], 0))
	holeDiameter := coerce.Number(in["holeDiameter"], 0)
	return strings.Join([]string{
		"VIA",
		num(coerce.Number(in["centerX"], 0)), num(coerce.Number(in["centerY"], 0)),
		num(viaDiameter),
		sanitize(coerce.StringOr(in["netName"], "")),
		num(ViaHoleRadius(holeDiameter, viaDiameter)),
		r.Outer.ID, locked(in),
	}, "~")
}
