package libdoc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
)

// Kind is the library document domain.
type Kind string

const (
	KindSymbol    Kind = "symbol"
	KindFootprint Kind = "footprint"
)

// ParseKind accepts the domain names and the host's numeric library types
// ("2" symbol, "4" footprint).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "symbol", "sym", "2":
		return KindSymbol, nil
	case "footprint", "fp", "4":
		return KindFootprint, nil
	}
	return "", fmt.Errorf("unknown document kind: %q", s)
}

// LibraryType returns the host's numeric library type for the kind.
func (k Kind) LibraryType() string {
	if k == KindFootprint {
		return "4"
	}
	return "2"
}

// LibraryRef identifies one item inside a host library.
type LibraryRef struct {
	LibraryUUID string `json:"libraryUuid" yaml:"libraryUuid"`
	UUID        string `json:"uuid" yaml:"uuid"`
}

// Key is the "libraryUuid:uuid" identity used for caching.
func (r LibraryRef) Key() string {
	return r.LibraryUUID + ":" + r.UUID
}

// Valid reports whether both identifiers are present.
func (r LibraryRef) Valid() bool {
	return r.LibraryUUID != "" && r.UUID != ""
}

// Extraction is the canonical {head, shape[]} record of one document.
type Extraction struct {
	Head  Head        // Document metadata
	Shape []ShapeLine // One entry per drawing primitive
}

// Lines returns the wire form of every shape line.
func (e *Extraction) Lines() []string {
	out := make([]string, len(e.Shape))
	for i, l := range e.Shape {
		out[i] = l.String()
	}
	return out
}

type extractionJSON struct {
	Head  map[string]any `json:"head"`
	Shape []string       `json:"shape"`
}

func (e Extraction) MarshalJSON() ([]byte, error) {
	return json.Marshal(extractionJSON{Head: e.Head.Map(), Shape: e.Lines()})
}

func (e *Extraction) UnmarshalJSON(b []byte) error {
	var raw extractionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Head = NewHead(raw.Head)
	e.Shape = ParseShapeLines(raw.Shape)
	return nil
}

// Head is the per-document metadata object. Well-known keys are lifted into
// typed fields when they carry the expected type; every other key, and any
// well-known key with an unexpected type, stays in Extra. Map rebuilds the
// original mapping.
type Head struct {
	DocType string   // "docType"
	OriginX *float64 // "originX"
	OriginY *float64 // "originY"
	X       *float64 // "x"
	Y       *float64 // "y"
	Extra   map[string]any
}

// NewHead splits a decoded head object into typed fields and the residual map.
func NewHead(m map[string]any) Head {
	h := Head{Extra: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case "docType":
			if s, ok := v.(string); ok && s != "" {
				h.DocType = s
				continue
			}
		case "originX":
			if n, ok := v.(float64); ok {
				h.OriginX = &n
				continue
			}
		case "originY":
			if n, ok := v.(float64); ok {
				h.OriginY = &n
				continue
			}
		case "x":
			if n, ok := v.(float64); ok {
				h.X = &n
				continue
			}
		case "y":
			if n, ok := v.(float64); ok {
				h.Y = &n
				continue
			}
		}
		h.Extra[k] = v
	}
	return h
}

// Map returns the head as a plain mapping.
func (h Head) Map() map[string]any {
	out := make(map[string]any, len(h.Extra)+5)
	for k, v := range h.Extra {
		out[k] = v
	}
	if h.DocType != "" {
		out["docType"] = h.DocType
	}
	if h.OriginX != nil {
		out["originX"] = *h.OriginX
	}
	if h.OriginY != nil {
		out["originY"] = *h.OriginY
	}
	if h.X != nil {
		out["x"] = *h.X
	}
	if h.Y != nil {
		out["y"] = *h.Y
	}
	return out
}

// Get returns the raw value stored under key.
func (h Head) Get(key string) (any, bool) {
	v, ok := h.Map()[key]
	return v, ok
}

// Number reads a numeric head field. "x" falls back to "originX" and "y" to
// "originY"; unparseable or missing values read as 0.
func (h Head) Number(key string) float64 {
	m := h.Map()
	raw, ok := m[key]
	if !ok || raw == nil {
		switch key {
		case "x":
			raw = m["originX"]
		case "y":
			raw = m["originY"]
		}
	}
	return coerce.Number(raw, 0)
}

// CPara returns a non-blank string parameter from the head's "c_para" object.
func (h Head) CPara(key string) (string, bool) {
	para, ok := coerce.Record(h.Extra["c_para"])
	if !ok {
		return "", false
	}
	return coerce.String(para[key])
}

// Keys lists the head's keys in sorted order.
func (h Head) Keys() []string {
	m := h.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
