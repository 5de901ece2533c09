package v3

import "github.com/dgallion1/libgest/internal/libdoc"

// Extract reinterprets text as a V3 document. It declines when the records
// cannot be parsed, there is no DOCHEAD docType, or the docType belongs to
// neither the symbol nor the footprint domain.
func Extract(text string) (*libdoc.Extraction, bool) {
	recs, ok := ParseRecords(text)
	if !ok {
		return nil, false
	}
	docType, ok := DocType(recs)
	if !ok {
		return nil, false
	}

	var lines []string
	switch docType {
	case "SYMBOL", "SCH_PAGE", "SIMULATION":
		lines = BuildSymbolShapes(recs)
	case "FOOTPRINT", "PCB":
		lines = BuildFootprintShapes(recs)
	default:
		return nil, false
	}

	ox, oy := Origin(recs)
	head := libdoc.NewHead(map[string]any{
		"docType": docType,
		"originX": ox,
		"originY": oy,
		"x":       ox,
		"y":       oy,
	})
	shape := make([]libdoc.ShapeLine, len(lines))
	for i, l := range lines {
		shape[i] = libdoc.LegacyLine(l)
	}
	return &libdoc.Extraction{Head: head, Shape: shape}, true
}
