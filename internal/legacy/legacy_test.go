package legacy

import (
	"errors"
	"testing"

	"github.com/dgallion1/libgest/internal/v3"
)

func TestParseSymbol_V3Output(t *testing.T) {
	recs, ok := v3.ParseRecords("{\"type\":\"DOCHEAD\"}||{\"docType\":\"SYMBOL\"}\n" +
		"{\"type\":\"PIN\",\"id\":\"p1\"}||{\"x\":10,\"y\":-20,\"rotation\":180,\"length\":150,\"pinShape\":\"INVERTED\"}\n" +
		"{\"type\":\"ATTR\"}||{\"parentId\":\"p1\",\"key\":\"NAME\",\"value\":\"CLK\"}\n" +
		"{\"type\":\"ATTR\"}||{\"parentId\":\"p1\",\"key\":\"NUMBER\",\"value\":\"4\"}\n" +
		"{\"type\":\"TEXT\",\"id\":\"t1\"}||{\"text\":\"U?\",\"align\":\"RIGHT\",\"fontSize\":9}")
	if !ok {
		t.Fatal("expected records")
	}

	sym, err := Parser{}.ParseSymbol(v3.BuildSymbolShapes(recs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sym.Pins) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(sym.Pins))
	}
	p := sym.Pins[0]
	if p.Number != "4" || p.Name != "CLK" {
		t.Errorf("expected pin 4/CLK, got %q/%q", p.Number, p.Name)
	}
	if p.X != 10 || p.Y != -20 || p.Rotation != 180 {
		t.Errorf("unexpected position: %+v", p)
	}
	if p.PinLength != 150 {
		t.Errorf("expected length 150, got %v", p.PinLength)
	}
	if !p.HasDot || p.HasClock {
		t.Errorf("expected dot without clock, got dot=%v clock=%v", p.HasDot, p.HasClock)
	}

	if len(sym.Texts) != 1 {
		t.Fatalf("expected 1 text, got %d", len(sym.Texts))
	}
	if tx := sym.Texts[0]; tx.Text != "U?" || tx.Align != "R" || tx.FontSize != 9 || tx.ID != "t1" {
		t.Errorf("unexpected text: %+v", tx)
	}
}

func TestParseSymbol_Primitives(t *testing.T) {
	sym, err := Parser{}.ParseSymbol([]string{
		"R~2~4~0~0~8~4~#880000~2~~none~r1~0",
		"C~1~1~3~~~~~c1~0",
		"E~0~0~2~1~#000000~1~~#FFFFFF~e1~0",
		"PL~0 0 5 5~#000000~1~~none~l1~0",
		"PG~0 0 5 0 5 5~#000000~1~~none~g1~0",
		"PT~M 0 0 L 1 1~#000000~1~~none~pt1~0",
		"J~unknown",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sym.Rectangles) != 1 || sym.Rectangles[0].Width != 8 || sym.Rectangles[0].StrokeColor != "#880000" {
		t.Errorf("unexpected rectangles: %+v", sym.Rectangles)
	}
	if len(sym.Circles) != 1 || sym.Circles[0].StrokeColor != "#000000" || sym.Circles[0].FillColor != "none" {
		t.Errorf("expected defaulted circle colors, got %+v", sym.Circles)
	}
	if len(sym.Ellipses) != 1 || sym.Ellipses[0].FillColor != "#FFFFFF" {
		t.Errorf("unexpected ellipses: %+v", sym.Ellipses)
	}
	if len(sym.Polylines) != 1 || len(sym.Polygons) != 1 || len(sym.Paths) != 1 {
		t.Errorf("expected one of each line kind, got %d/%d/%d", len(sym.Polylines), len(sym.Polygons), len(sym.Paths))
	}
}

func TestParseSymbol_ShortLine(t *testing.T) {
	_, err := Parser{}.ParseSymbol([]string{"C~1~1~3~~~~~c1~0", "R~1~2"})
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("expected LineError, got %v", err)
	}
	if le.Index != 1 || le.Tag != "R" {
		t.Errorf("expected line 1 (R), got %d (%s)", le.Index, le.Tag)
	}
}

func TestParseFootprint_V3Output(t *testing.T) {
	recs, ok := v3.ParseRecords("{\"type\":\"DOCHEAD\"}||{\"docType\":\"FOOTPRINT\"}\n" +
		"{\"type\":\"PAD\",\"id\":\"pad1\"}||{\"centerX\":1,\"centerY\":2,\"num\":\"1\",\"defaultPad\":{\"padType\":\"RECT\",\"width\":1.5,\"height\":1},\"hole\":{\"width\":0.8,\"height\":0.8}}\n" +
		"{\"type\":\"LINE\",\"id\":\"l1\"}||{\"startX\":0,\"startY\":0,\"endX\":3,\"endY\":0,\"width\":0.25}\n" +
		"{\"type\":\"VIA\",\"id\":\"v1\"}||{\"centerX\":5,\"centerY\":5,\"viaDiameter\":0.6,\"holeDiameter\":0.3}")
	if !ok {
		t.Fatal("expected records")
	}

	fp, err := Parser{}.ParseFootprint(v3.BuildFootprintShapes(recs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fp.Pads) != 1 || len(fp.Tracks) != 1 || len(fp.Vias) != 1 {
		t.Fatalf("expected 1 pad, 1 track, 1 via, got %d/%d/%d", len(fp.Pads), len(fp.Tracks), len(fp.Vias))
	}
	pad := fp.Pads[0]
	if pad.Shape != "RECT" || pad.Number != "1" || pad.Width != 1.5 || pad.HoleRadius != 0.4 || !pad.IsPlated {
		t.Errorf("unexpected pad: %+v", pad)
	}
	if tr := fp.Tracks[0]; tr.StrokeWidth != 0.25 || tr.LayerID != 21 || tr.Points != "0 0 3 0" {
		t.Errorf("unexpected track: %+v", tr)
	}
	if v := fp.Vias[0]; v.Diameter != 0.6 || v.Radius != 0.15 {
		t.Errorf("unexpected via: %+v", v)
	}
}

func TestParseFootprint_OtherKinds(t *testing.T) {
	fp, err := Parser{}.ParseFootprint([]string{
		"HOLE~1~1~0.5~h1~0",
		"CIRCLE~0~0~2~0.2~3~c1~0",
		"ARC~0.1~3~~M 0 0 A 1 1 0 0 1 2 0~~a1~0",
		"RECT~0~0~4~2~21~r1~0~0.15",
		"TEXT~N~0~0~0.1~0~0~3~~1.2~REF**~~none~t1~0",
		"SVGNODE~{}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fp.Holes) != 1 || fp.Holes[0].Radius != 0.5 {
		t.Errorf("unexpected holes: %+v", fp.Holes)
	}
	if len(fp.Circles) != 1 || fp.Circles[0].LayerID != 3 {
		t.Errorf("unexpected circles: %+v", fp.Circles)
	}
	if len(fp.Arcs) != 1 || fp.Arcs[0].Path != "M 0 0 A 1 1 0 0 1 2 0" {
		t.Errorf("unexpected arcs: %+v", fp.Arcs)
	}
	if len(fp.Rects) != 1 || fp.Rects[0].StrokeWidth != 0.15 {
		t.Errorf("unexpected rects: %+v", fp.Rects)
	}
	if len(fp.Texts) != 1 || fp.Texts[0].IsDisplayed || fp.Texts[0].Text != "REF**" {
		t.Errorf("unexpected texts: %+v", fp.Texts)
	}
}

func TestStubLength(t *testing.T) {
	tests := map[string]float64{
		"M 0 0 h 200":  200,
		"M360 290h-10": 10,
		"M 0 0 v -1.5": 1.5,
		"":             100,
	}
	for in, want := range tests {
		if got := stubLength(in); got != want {
			t.Errorf("stubLength(%q): expected %v, got %v", in, want, got)
		}
	}
}
