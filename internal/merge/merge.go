// Package merge folds embedded JSON shape objects into the aggregate a
// legacy line parser produces for the rest of a document's shape lines.
package merge

import (
	"fmt"

	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/shape"
)

// LegacyParser turns positional shape lines into typed aggregates.
type LegacyParser interface {
	ParseSymbol(lines []string) (*shape.Symbol, error)
	ParseFootprint(lines []string) (*shape.Footprint, error)
}

// Merger is stateless apart from its parser and safe for concurrent use when
// the parser is.
type Merger struct {
	Parser LegacyParser
}

// New creates a Merger.
func New(p LegacyParser) *Merger {
	return &Merger{Parser: p}
}

// Partition separates legacy lines from JSON shape objects. A line is JSON
// when it carries the sentinel prefix or starts with "{" and decodes to an
// object; anything else stays legacy, in order.
func Partition(lines []libdoc.ShapeLine) (legacy []string, objects []map[string]any) {
	for _, l := range lines {
		if !l.IsRaw() {
			l = libdoc.ParseShapeLine(l.String())
		}
		if obj, ok := l.Object(); ok {
			objects = append(objects, obj)
			continue
		}
		legacy = append(legacy, l.String())
	}
	return legacy, objects
}

// Merge dispatches on kind.
func (m *Merger) Merge(lines []libdoc.ShapeLine, kind libdoc.Kind) (shape.Aggregate, error) {
	switch kind {
	case libdoc.KindSymbol:
		s, err := m.Symbol(lines)
		if err != nil {
			return shape.Aggregate{}, err
		}
		return shape.Aggregate{Kind: kind, Symbol: s}, nil
	case libdoc.KindFootprint:
		f, err := m.Footprint(lines)
		if err != nil {
			return shape.Aggregate{}, err
		}
		return shape.Aggregate{Kind: kind, Footprint: f}, nil
	}
	return shape.Aggregate{}, fmt.Errorf("merge: unknown document kind %q", kind)
}

// Symbol parses the legacy lines and adds every JSON object to each symbol
// collection whose hint it matches.
func (m *Merger) Symbol(lines []libdoc.ShapeLine) (*shape.Symbol, error) {
	legacy, objects := Partition(lines)
	s, err := m.Parser.ParseSymbol(legacy)
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		for _, h := range symbolHints {
			if h.match(obj) {
				h.apply(s, obj)
			}
		}
	}
	return s, nil
}

// Footprint parses the legacy lines and adds every JSON object to the first
// footprint collection whose hint it matches.
func (m *Merger) Footprint(lines []libdoc.ShapeLine) (*shape.Footprint, error) {
	legacy, objects := Partition(lines)
	f, err := m.Parser.ParseFootprint(legacy)
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		for _, h := range footprintHints {
			if h.match(obj) {
				h.apply(f, obj)
				break
			}
		}
	}
	return f, nil
}
