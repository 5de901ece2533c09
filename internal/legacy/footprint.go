package legacy

import (
	"strings"

	"github.com/dgallion1/libgest/internal/shape"
)

// ParseFootprint parses footprint-domain lines: PAD, TRACK, VIA, HOLE,
// CIRCLE, ARC, RECT and TEXT.
func (Parser) ParseFootprint(lines []string) (*shape.Footprint, error) {
	fp := &shape.Footprint{}
	for i, line := range lines {
		f := split(line)
		tag := f[0]
		switch tag {
		case "PAD":
			if err := need(i, tag, f, 9); err != nil {
				return nil, err
			}
			holeRadius := f.num(9, 0)
			fp.Pads = append(fp.Pads, shape.Pad{
				Shape:      f.color(1, "RECT"),
				CenterX:    f.num(2, 0),
				CenterY:    f.num(3, 0),
				Width:      f.num(4, 0),
				Height:     f.num(5, 0),
				LayerID:    f.integer(6, 1),
				Net:        f.str(7),
				Number:     f.str(8),
				HoleRadius: holeRadius,
				Points:     strings.TrimSpace(f.str(10)),
				Rotation:   f.num(11, 0),
				ID:         f.str(12),
				HoleLength: f.num(13, 0),
				HolePoint:  f.str(14),
				IsPlated:   platedFlag(f.str(15), holeRadius),
				IsLocked:   f.flag(16),
			})
		case "TRACK":
			if err := need(i, tag, f, 5); err != nil {
				return nil, err
			}
			fp.Tracks = append(fp.Tracks, shape.Track{
				StrokeWidth: f.num(1, 0.1),
				LayerID:     f.integer(2, 1),
				Net:         f.str(3),
				Points:      strings.TrimSpace(f.str(4)),
				ID:          f.str(5),
				IsLocked:    f.flag(6),
			})
		case "VIA":
			if err := need(i, tag, f, 4); err != nil {
				return nil, err
			}
			diameter := f.num(3, 0)
			fp.Vias = append(fp.Vias, shape.Via{
				CenterX:  f.num(1, 0),
				CenterY:  f.num(2, 0),
				Diameter: diameter,
				Net:      f.str(4),
				Radius:   f.num(5, diameter/2),
				ID:       f.str(6),
				IsLocked: f.flag(7),
			})
		case "HOLE":
			if err := need(i, tag, f, 4); err != nil {
				return nil, err
			}
			fp.Holes = append(fp.Holes, shape.Hole{
				CenterX:  f.num(1, 0),
				CenterY:  f.num(2, 0),
				Radius:   f.num(3, 0.1),
				ID:       f.str(4),
				IsLocked: f.flag(5),
			})
		case "CIRCLE":
			if err := need(i, tag, f, 4); err != nil {
				return nil, err
			}
			fp.Circles = append(fp.Circles, shape.FootprintCircle{
				CX:          f.num(1, 0),
				CY:          f.num(2, 0),
				Radius:      f.num(3, 0),
				StrokeWidth: f.num(4, 0.1),
				LayerID:     f.integer(5, 21),
				ID:          f.str(6),
				IsLocked:    f.flag(7),
			})
		case "ARC":
			if err := need(i, tag, f, 5); err != nil {
				return nil, err
			}
			fp.Arcs = append(fp.Arcs, shape.Arc{
				StrokeWidth: f.num(1, 0.1),
				LayerID:     f.integer(2, 21),
				Net:         f.str(3),
				Path:        f.str(4),
				HelperDots:  f.str(5),
				ID:          f.str(6),
				IsLocked:    f.flag(7),
			})
		case "RECT":
			if err := need(i, tag, f, 5); err != nil {
				return nil, err
			}
			fp.Rects = append(fp.Rects, shape.Rect{
				X:           f.num(1, 0),
				Y:           f.num(2, 0),
				Width:       f.num(3, 0),
				Height:      f.num(4, 0),
				LayerID:     f.integer(5, 21),
				ID:          f.str(6),
				IsLocked:    f.flag(7),
				StrokeWidth: f.num(8, 0.1),
			})
		case "TEXT":
			if err := need(i, tag, f, 11); err != nil {
				return nil, err
			}
			fp.Texts = append(fp.Texts, shape.FootprintText{
				Type:        f.str(1),
				CenterX:     f.num(2, 0),
				CenterY:     f.num(3, 0),
				StrokeWidth: f.num(4, 0.1),
				Rotation:    f.num(5, 0),
				Mirror:      f.str(6),
				LayerID:     f.integer(7, 21),
				Net:         f.str(8),
				FontSize:    f.num(9, 1),
				Text:        f.str(10),
				TextPath:    f.str(11),
				IsDisplayed: f.str(12) != "none",
				ID:          f.str(13),
				IsLocked:    f.flag(14),
			})
		}
	}
	return fp, nil
}

// platedFlag reads an explicit plating flag, defaulting to plated when the
// pad has a drill.
func platedFlag(s string, holeRadius float64) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "1", "TRUE":
		return true
	case "N", "0", "FALSE":
		return false
	}
	return holeRadius > 0
}
