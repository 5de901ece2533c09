// Package legacy parses positional shape lines ("P~...", "PAD~...") into
// typed shape aggregates.
package legacy

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
	"github.com/dgallion1/libgest/internal/shape"
)

var pathNumber = regexp.MustCompile(`[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// LineError reports a recognized line with too few fields.
type LineError struct {
	Index int
	Tag   string
	Want  int
	Got   int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("shape line %d (%s): need %d fields, got %d", e.Index, e.Tag, e.Want, e.Got)
}

// Parser reads the symbol and footprint line grammars. Unknown tags are
// skipped. The zero value is ready to use.
type Parser struct{}

// fields is a split line with tolerant accessors; out-of-range reads are
// empty.
type fields []string

func split(line string) fields {
	return strings.Split(line, "~")
}

func (f fields) str(i int) string {
	if i < len(f) {
		return f[i]
	}
	return ""
}

func (f fields) num(i int, fallback float64) float64 {
	if i >= len(f) || strings.TrimSpace(f[i]) == "" {
		return fallback
	}
	return coerce.Number(f[i], fallback)
}

func (f fields) integer(i int, fallback int) int {
	return int(f.num(i, float64(fallback)))
}

func (f fields) flag(i int) bool {
	return coerce.Bool(f.str(i), false)
}

func (f fields) color(i int, fallback string) string {
	if s := strings.TrimSpace(f.str(i)); s != "" {
		return s
	}
	return fallback
}

func need(index int, tag string, f fields, want int) error {
	if len(f) < want {
		return &LineError{Index: index, Tag: tag, Want: want, Got: len(f)}
	}
	return nil
}

// ParseSymbol parses symbol-domain lines: P, R, C, E, PL, PG, PT and T.
func (Parser) ParseSymbol(lines []string) (*shape.Symbol, error) {
	s := &shape.Symbol{}
	for i, line := range lines {
		tag, _, _ := strings.Cut(line, "~")
		switch tag {
		case "P":
			pin, err := parsePin(i, line)
			if err != nil {
				return nil, err
			}
			s.Pins = append(s.Pins, pin)
		case "R":
			f := split(line)
			if err := need(i, tag, f, 7); err != nil {
				return nil, err
			}
			s.Rectangles = append(s.Rectangles, shape.Rectangle{
				X: f.num(1, 0), Y: f.num(2, 0), RX: f.num(3, 0), RY: f.num(4, 0),
				Width: f.num(5, 0), Height: f.num(6, 0),
				StrokeColor: f.color(7, "#000000"), StrokeWidth: f.num(8, 1),
				FillColor: f.color(10, "none"), ID: f.str(11),
			})
		case "C":
			f := split(line)
			if err := need(i, tag, f, 4); err != nil {
				return nil, err
			}
			s.Circles = append(s.Circles, shape.Circle{
				CX: f.num(1, 0), CY: f.num(2, 0), Radius: f.num(3, 0),
				StrokeColor: f.color(4, "#000000"), StrokeWidth: f.num(5, 1),
				FillColor: f.color(7, "none"), ID: f.str(8),
			})
		case "E":
			f := split(line)
			if err := need(i, tag, f, 5); err != nil {
				return nil, err
			}
			s.Ellipses = append(s.Ellipses, shape.Ellipse{
				CX: f.num(1, 0), CY: f.num(2, 0), RX: f.num(3, 0), RY: f.num(4, 0),
				StrokeColor: f.color(5, "#000000"), StrokeWidth: f.num(6, 1),
				FillColor: f.color(8, "none"), ID: f.str(9),
			})
		case "PL", "PG":
			f := split(line)
			if err := need(i, tag, f, 2); err != nil {
				return nil, err
			}
			pl := shape.Polyline{
				Points:      strings.TrimSpace(f.str(1)),
				StrokeColor: f.color(2, "#000000"), StrokeWidth: f.num(3, 1),
				FillColor: f.color(5, "none"), ID: f.str(6),
			}
			if tag == "PL" {
				s.Polylines = append(s.Polylines, pl)
			} else {
				s.Polygons = append(s.Polygons, pl)
			}
		case "PT":
			f := split(line)
			if err := need(i, tag, f, 2); err != nil {
				return nil, err
			}
			s.Paths = append(s.Paths, shape.Path{
				Path:        f.str(1),
				StrokeColor: f.color(2, "#000000"), StrokeWidth: f.num(3, 1),
				FillColor: f.color(5, "none"), ID: f.str(6),
			})
		case "T":
			f := split(line)
			if err := need(i, tag, f, 13); err != nil {
				return nil, err
			}
			s.Texts = append(s.Texts, shape.Text{
				Align: f.str(1), X: f.num(2, 0), Y: f.num(3, 0), Rotation: f.num(4, 0),
				Color: f.color(5, "#000000"), FontSize: f.num(7, 7),
				TextType: f.str(11), Text: f.str(12), ID: f.str(15),
			})
		}
	}
	return s, nil
}

// parsePin reads the "^^"-joined pin segments: settings, dot position, stub
// path, name, number, inverted bubble and clock.
func parsePin(index int, line string) (shape.Pin, error) {
	segs := strings.Split(line, "^^")
	settings := split(segs[0])
	if err := need(index, "P", settings, 6); err != nil {
		return shape.Pin{}, err
	}
	seg := func(i int) fields {
		if i < len(segs) {
			return split(segs[i])
		}
		return nil
	}

	pin := shape.Pin{
		Number:         settings.str(3),
		ElectricalType: settings.color(2, "0"),
		X:              settings.num(4, 0),
		Y:              settings.num(5, 0),
		Rotation:       settings.num(6, 0),
		ID:             settings.str(7),
		PinLength:      stubLength(seg(2).str(0)),
		Name:           seg(3).str(4),
		HasDot:         seg(5).flag(0),
		HasClock:       seg(6).flag(0),
	}
	if pin.Name == "" {
		pin.Name = pin.Number
	}
	return pin, nil
}

// stubLength reads the length of a pin stub path such as "M 0 0 h 200" or
// "M360 290h-10". It is the magnitude of the last number, 100 if none.
func stubLength(path string) float64 {
	nums := pathNumber.FindAllString(path, -1)
	if len(nums) == 0 {
		return 100
	}
	n, err := strconv.ParseFloat(nums[len(nums)-1], 64)
	if err != nil {
		return 100
	}
	return math.Abs(n)
}
