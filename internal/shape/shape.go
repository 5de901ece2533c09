// Package shape holds the typed primitive collections produced by parsing
// and merging a document's shape lines.
package shape

import "github.com/dgallion1/libgest/internal/libdoc"

// Point is a drawing origin.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Symbol is the parsed schematic-symbol aggregate.
type Symbol struct {
	Pins       []Pin       `json:"pins"`
	Rectangles []Rectangle `json:"rectangles"`
	Circles    []Circle    `json:"circles"`
	Ellipses   []Ellipse   `json:"ellipses"`
	Polylines  []Polyline  `json:"polylines"`
	Polygons   []Polyline  `json:"polygons"`
	Paths      []Path      `json:"paths"`
	Texts      []Text      `json:"texts"`
}

// FindPin returns the index of a pin with the same number and position.
func (s *Symbol) FindPin(number string, x, y float64) int {
	for i, p := range s.Pins {
		if p.Number == number && p.X == x && p.Y == y {
			return i
		}
	}
	return -1
}

type Pin struct {
	Number         string  `json:"number"`
	Name           string  `json:"name"`
	ElectricalType string  `json:"electricalType"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Rotation       float64 `json:"rotation"`
	HasDot         bool    `json:"hasDot"`
	HasClock       bool    `json:"hasClock"`
	PinLength      float64 `json:"pinLength"`
	ID             string  `json:"id,omitempty"`
}

type Rectangle struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	RX          float64 `json:"rx"`
	RY          float64 `json:"ry"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   string  `json:"fillColor"`
	ID          string  `json:"id,omitempty"`
}

type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	Radius      float64 `json:"radius"`
	StrokeWidth float64 `json:"strokeWidth"`
	StrokeColor string  `json:"strokeColor"`
	FillColor   string  `json:"fillColor"`
	ID          string  `json:"id,omitempty"`
}

type Ellipse struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	RX          float64 `json:"rx"`
	RY          float64 `json:"ry"`
	StrokeWidth float64 `json:"strokeWidth"`
	StrokeColor string  `json:"strokeColor"`
	FillColor   string  `json:"fillColor"`
	ID          string  `json:"id,omitempty"`
}

// Polyline is an open (PL) or closed (PG) point list, "x1 y1 x2 y2 ...".
type Polyline struct {
	Points      string  `json:"points"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   string  `json:"fillColor"`
	ID          string  `json:"id,omitempty"`
}

// Path is an SVG-style path.
type Path struct {
	Path        string  `json:"path"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   string  `json:"fillColor"`
	ID          string  `json:"id,omitempty"`
}

type Text struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Rotation  float64 `json:"rotation"`
	FontSize  float64 `json:"fontSize"`
	Text      string  `json:"text"`
	Color     string  `json:"color"`
	TextType  string  `json:"textType"`
	Align     string  `json:"align,omitempty"`
	IsPinPart bool    `json:"isPinPart"`
	ID        string  `json:"id"`
}

// Footprint is the parsed PCB-footprint aggregate.
type Footprint struct {
	Pads    []Pad             `json:"pads"`
	Tracks  []Track           `json:"tracks"`
	Holes   []Hole            `json:"holes"`
	Vias    []Via             `json:"vias"`
	Circles []FootprintCircle `json:"circles"`
	Arcs    []Arc             `json:"arcs"`
	Rects   []Rect            `json:"rects"`
	Texts   []FootprintText   `json:"texts"`
}

type Pad struct {
	Shape      string  `json:"shape"`
	CenterX    float64 `json:"centerX"`
	CenterY    float64 `json:"centerY"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	LayerID    int     `json:"layerId"`
	Net        string  `json:"net"`
	Number     string  `json:"number"`
	HoleRadius float64 `json:"holeRadius"`
	Points     string  `json:"points"`
	Rotation   float64 `json:"rotation"`
	ID         string  `json:"id"`
	HoleLength float64 `json:"holeLength"`
	HolePoint  string  `json:"holePoint"`
	IsPlated   bool    `json:"isPlated"`
	IsLocked   bool    `json:"isLocked"`
}

type Track struct {
	StrokeWidth float64 `json:"strokeWidth"`
	LayerID     int     `json:"layerId"`
	Net         string  `json:"net"`
	Points      string  `json:"points"`
	ID          string  `json:"id"`
	IsLocked    bool    `json:"isLocked"`
}

type Hole struct {
	CenterX  float64 `json:"centerX"`
	CenterY  float64 `json:"centerY"`
	Radius   float64 `json:"radius"`
	ID       string  `json:"id"`
	IsLocked bool    `json:"isLocked"`
}

type Via struct {
	CenterX  float64 `json:"centerX"`
	CenterY  float64 `json:"centerY"`
	Diameter float64 `json:"diameter"`
	Net      string  `json:"net"`
	Radius   float64 `json:"radius"`
	ID       string  `json:"id"`
	IsLocked bool    `json:"isLocked"`
}

// FootprintCircle is a full circle on a footprint layer.
type FootprintCircle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	Radius      float64 `json:"radius"`
	StrokeWidth float64 `json:"strokeWidth"`
	LayerID     int     `json:"layerId"`
	ID          string  `json:"id"`
	IsLocked    bool    `json:"isLocked"`
}

type Arc struct {
	StrokeWidth float64 `json:"strokeWidth"`
	LayerID     int     `json:"layerId"`
	Net         string  `json:"net"`
	Path        string  `json:"path"`
	HelperDots  string  `json:"helperDots"`
	ID          string  `json:"id"`
	IsLocked    bool    `json:"isLocked"`
}

type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeWidth float64 `json:"strokeWidth"`
	ID          string  `json:"id"`
	LayerID     int     `json:"layerId"`
	IsLocked    bool    `json:"isLocked"`
}

type FootprintText struct {
	Type        string  `json:"type"`
	CenterX     float64 `json:"centerX"`
	CenterY     float64 `json:"centerY"`
	StrokeWidth float64 `json:"strokeWidth"`
	Rotation    float64 `json:"rotation"`
	Mirror      string  `json:"mirror"`
	LayerID     int     `json:"layerId"`
	Net         string  `json:"net"`
	FontSize    float64 `json:"fontSize"`
	Text        string  `json:"text"`
	TextPath    string  `json:"textPath"`
	IsDisplayed bool    `json:"isDisplayed"`
	ID          string  `json:"id"`
	IsLocked    bool    `json:"isLocked"`
}

// Aggregate is the merge result for one document. Exactly one of Symbol and
// Footprint is set, matching Kind.
type Aggregate struct {
	Kind      libdoc.Kind `json:"kind"`
	Symbol    *Symbol     `json:"symbol,omitempty"`
	Footprint *Footprint  `json:"footprint,omitempty"`
}

// Counts reports the number of primitives per collection, for summaries.
func (a Aggregate) Counts() map[string]int {
	out := map[string]int{}
	if s := a.Symbol; s != nil {
		out["pins"] = len(s.Pins)
		out["rectangles"] = len(s.Rectangles)
		out["circles"] = len(s.Circles)
		out["ellipses"] = len(s.Ellipses)
		out["polylines"] = len(s.Polylines)
		out["polygons"] = len(s.Polygons)
		out["paths"] = len(s.Paths)
		out["texts"] = len(s.Texts)
	}
	if f := a.Footprint; f != nil {
		out["pads"] = len(f.Pads)
		out["tracks"] = len(f.Tracks)
		out["holes"] = len(f.Holes)
		out["vias"] = len(f.Vias)
		out["circles"] = len(f.Circles)
		out["arcs"] = len(f.Arcs)
		out["rects"] = len(f.Rects)
		out["texts"] = len(f.Texts)
	}
	return out
}
