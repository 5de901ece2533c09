package extract

import (
	"sort"
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
	"github.com/dgallion1/libgest/internal/jsonscan"
	"github.com/dgallion1/libgest/internal/libdoc"
)

const (
	searchDepth    = 8
	shapeScanDepth = 6
)

type node struct {
	value any
	depth int
}

// search walks the tree depth first looking for an object with a usable
// head and shape. Every step into a child, including a string that decodes
// as JSON, costs one unit of depth. Object children are visited in key order.
func search(root any) (*libdoc.Extraction, bool) {
	stack := []node{{root, searchDepth}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.depth <= 0 {
			continue
		}
		if found, ok := headAndShape(n.value); ok {
			return found, true
		}

		children := childrenOf(n.value)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, node{children[i], n.depth - 1})
		}
	}
	return nil, false
}

func childrenOf(v any) []any {
	switch t := v.(type) {
	case string:
		if parsed, ok := jsonscan.ParseEmbedded(t); ok {
			return []any{parsed}
		}
	case []any:
		return t
	case map[string]any:
		keys := sortedKeys(t)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = t[k]
		}
		return out
	}
	return nil
}

// headAndShape accepts an object whose head is an object (or JSON text of
// one) and whose shape holds at least one non-blank line.
func headAndShape(v any) (*libdoc.Extraction, bool) {
	obj, ok := coerce.Record(v)
	if !ok {
		return nil, false
	}
	head, ok := headObject(obj["head"])
	if !ok {
		return nil, false
	}
	lines, ok := shapeLines(obj["shape"])
	if !ok {
		return nil, false
	}
	return &libdoc.Extraction{
		Head:  libdoc.NewHead(head),
		Shape: libdoc.ParseShapeLines(lines),
	}, true
}

func headObject(v any) (map[string]any, bool) {
	if m, ok := coerce.Record(v); ok {
		return m, true
	}
	if s, ok := v.(string); ok {
		if parsed, ok := jsonscan.ParseEmbedded(s); ok {
			return coerce.Record(parsed)
		}
	}
	return nil, false
}

// shapeLines accepts a list of strings, JSON text of such a list, or
// newline-separated text. Blank and non-string entries are dropped.
func shapeLines(v any) ([]string, bool) {
	switch t := v.(type) {
	case []any:
		lines := nonBlank(t)
		return lines, len(lines) > 0
	case string:
		if parsed, ok := jsonscan.ParseEmbedded(t); ok {
			if list, ok := parsed.([]any); ok {
				if lines := nonBlank(list); len(lines) > 0 {
					return lines, true
				}
			}
		}
		var lines []string
		for _, l := range strings.Split(t, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		return lines, len(lines) > 0
	}
	return nil, false
}

func nonBlank(list []any) []string {
	var out []string
	for _, item := range list {
		if s, ok := coerce.String(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
