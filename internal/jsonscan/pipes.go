package jsonscan

import "strings"

// Segments is a pipe-split document. Raw and Parsed are index-aligned: each
// Parsed entry is the structured value recovered from Raw[i], or the trimmed
// raw text when nothing could be recovered.
type Segments struct {
	Raw    []string
	Parsed []any
}

// Len returns the number of segments.
func (s Segments) Len() int {
	return len(s.Raw)
}

// SplitPipes splits s on "||" and decodes each non-empty segment. It declines
// (ok=false) when s has no "||" or fewer than two non-empty segments.
//
// Per segment: whole-segment JSON first, then every brace-scanned span that
// decodes, then the single-"|" pieces that decode. One recovered value is
// stored as is; several are stored as a []any.
func SplitPipes(s string) (Segments, bool) {
	if !strings.Contains(s, "||") {
		return Segments{}, false
	}
	var raw []string
	for _, part := range strings.Split(s, "||") {
		if t := strings.TrimSpace(part); t != "" {
			raw = append(raw, t)
		}
	}
	if len(raw) < 2 {
		return Segments{}, false
	}

	segs := Segments{Raw: raw, Parsed: make([]any, len(raw))}
	for i, seg := range raw {
		segs.Parsed[i] = parseSegment(seg)
	}
	return segs, true
}

func parseSegment(seg string) any {
	if v, ok := ParseValue(seg); ok {
		return v
	}

	var found []any
	for _, span := range ScanObjects(seg) {
		if v, ok := ParseValue(span); ok {
			found = append(found, v)
		}
	}
	if len(found) == 0 && strings.Contains(seg, "|") {
		for _, piece := range strings.Split(seg, "|") {
			if v, ok := ParseEmbedded(piece); ok {
				found = append(found, v)
			}
		}
	}

	switch len(found) {
	case 0:
		return seg
	case 1:
		return found[0]
	}
	return found
}
