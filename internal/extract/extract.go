// Package extract locates the canonical {head, shape} pair in a library
// document, whatever generation of the host format it was saved in.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/dgallion1/libgest/internal/jsonscan"
	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/v3"
)

// Options tunes an Extractor.
type Options struct {
	// RepairJSON runs text that fails strict JSON parsing through a JSON
	// repairer before trying pipe segmentation.
	RepairJSON bool
}

// Extractor is stateless and safe for concurrent use.
type Extractor struct {
	opts Options
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract runs the default Extractor.
func Extract(doc any) (*libdoc.Extraction, error) {
	return New(Options{}).Extract(doc)
}

// Extract finds the {head, shape} pair in doc. doc is either text (string,
// []byte, json.RawMessage) or an already decoded JSON tree.
//
// Strategies, in order: strict JSON (optionally repaired) followed by a
// bounded tree search; pipe segmentation followed by the same search and then
// head-record reconstruction and, for pipe text only, reinterpretation as a
// V3 record document. Text that is neither JSON nor pipe-delimited fails
// without further attempts. When all of them decline the error is a
// *FormatError.
func (e *Extractor) Extract(doc any) (*libdoc.Extraction, error) {
	text, isText := asText(doc)
	diag := Diagnostics{Source: doc}
	if isText {
		diag.Source = text
	}

	var root any
	var segs *jsonscan.Segments
	switch {
	case !isText:
		root, diag.Root, diag.Parsed = doc, doc, true
	default:
		if v, ok := e.parseText(text); ok {
			root, diag.Root, diag.Parsed = v, v, true
		} else if s, ok := jsonscan.SplitPipes(text); ok {
			segs = &s
			diag.Segments = segs
			root = s.Parsed
		}
	}

	if root != nil {
		if found, ok := search(root); ok {
			return found, nil
		}
	}
	if segs != nil {
		if found, ok := reconstruct(*segs); ok {
			return found, nil
		}
		if found, ok := v3.Extract(text); ok {
			return found, nil
		}
	}
	return nil, &FormatError{Diagnostics: diag.String()}
}

func (e *Extractor) parseText(text string) (any, bool) {
	if v, ok := jsonscan.ParseValue(text); ok {
		return v, true
	}
	if !e.opts.RepairJSON || strings.TrimSpace(text) == "" {
		return nil, false
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, false
	}
	v, ok := jsonscan.ParseValue(repaired)
	if !ok {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return nil, false
}

func asText(doc any) (string, bool) {
	switch d := doc.(type) {
	case string:
		return d, true
	case []byte:
		return string(d), true
	case json.RawMessage:
		return string(d), true
	}
	return "", false
}
