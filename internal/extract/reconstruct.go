package extract

import (
	"regexp"

	"github.com/dgallion1/libgest/internal/coerce"
	"github.com/dgallion1/libgest/internal/jsonscan"
	"github.com/dgallion1/libgest/internal/libdoc"
)

var shapeLinePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,16}[~|]`)

// LooksLikeShapeLine reports whether s has the form of a legacy shape line:
// an upper-case tag followed immediately by a field separator.
func LooksLikeShapeLine(s string) bool {
	return len(s) >= 3 && len(s) <= 4096 && shapeLinePattern.MatchString(s)
}

// reconstruct rebuilds an extraction from pipe segments: the first object
// with a string docType is the head, and the segments after it contribute
// shape lines.
func reconstruct(segs jsonscan.Segments) (*libdoc.Extraction, bool) {
	headIdx := -1
	var head map[string]any
	for i, v := range segs.Parsed {
		obj, ok := coerce.Record(v)
		if !ok {
			continue
		}
		if _, ok := obj["docType"].(string); ok {
			headIdx, head = i, obj
			break
		}
	}
	if headIdx < 0 {
		return nil, false
	}

	if lines, ok := shapeLines(head["shape"]); ok {
		return &libdoc.Extraction{
			Head:  libdoc.NewHead(withoutShape(head)),
			Shape: libdoc.ParseShapeLines(lines),
		}, true
	}

	var (
		lines   orderedSet
		records []map[string]any
	)
	for _, v := range segs.Parsed[headIdx+1:] {
		for _, item := range segmentItems(v) {
			if s, ok := item.(string); ok {
				if LooksLikeShapeLine(s) {
					lines.add(s)
				}
				continue
			}
			obj, ok := coerce.Record(item)
			if !ok {
				continue
			}
			switch obj["type"] {
			case "DOCHEAD", "DOCTAIL":
				continue
			}
			records = append(records, obj)
			if own, ok := shapeLines(obj["shape"]); ok {
				for _, l := range own {
					lines.add(l)
				}
			}
			scanShapeLines(obj, &lines)
		}
	}

	var shape []libdoc.ShapeLine
	switch {
	case len(lines.items) > 0:
		shape = libdoc.ParseShapeLines(lines.items)
	case len(records) > 0:
		shape = make([]libdoc.ShapeLine, len(records))
		for i, r := range records {
			shape[i] = libdoc.RawShape(r)
		}
	default:
		return nil, false
	}
	return &libdoc.Extraction{Head: libdoc.NewHead(head), Shape: shape}, true
}

// segmentItems flattens a segment that recovered several values.
func segmentItems(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// scanShapeLines collects shape-line strings nested anywhere in v, down to
// a fixed depth.
func scanShapeLines(v any, into *orderedSet) {
	stack := []node{{v, shapeScanDepth}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.depth <= 0 {
			continue
		}
		var children []any
		switch t := n.value.(type) {
		case string:
			if LooksLikeShapeLine(t) {
				into.add(t)
			}
			continue
		case []any:
			children = t
		case map[string]any:
			for _, k := range sortedKeys(t) {
				children = append(children, t[k])
			}
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, node{children[i], n.depth - 1})
		}
	}
}

func withoutShape(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != "shape" {
			out[k] = v
		}
	}
	return out
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, dup := s.seen[v]; dup {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
