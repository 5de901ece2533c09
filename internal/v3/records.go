// Package v3 reads the host's pipe-delimited "V3" record protocol and
// synthesizes legacy shape lines from its typed records.
package v3

import (
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
	"github.com/dgallion1/libgest/internal/jsonscan"
)

// Outer is the typed envelope of one record. Type drives dispatch.
type Outer struct {
	Type   string
	ID     string
	Ticket *int64
}

// Record is one (outer, inner) pair. Records are never modified after
// parsing.
type Record struct {
	Outer Outer
	Inner map[string]any
}

// ParseRecords reconstructs the record sequence of a V3 document. The
// line-based layout is tried first, then flat object pairs. Each strategy
// either accepts the whole document or declines; ok is false when neither
// applies.
func ParseRecords(text string) ([]Record, bool) {
	if recs, ok := parseLines(text); ok {
		return recs, true
	}
	return parseObjectPairs(text)
}

// parseLines expects every non-empty line to be `{outer}||{inner}`.
func parseLines(text string) ([]Record, bool) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) < 2 {
		return nil, false
	}

	recs := make([]Record, 0, len(lines))
	for _, line := range lines {
		outerText, innerText, found := strings.Cut(line, "||")
		if !found {
			return nil, false
		}
		outer, ok := jsonscan.ParseObject(strings.TrimSpace(outerText))
		if !ok {
			return nil, false
		}
		inner, ok := jsonscan.ParseObject(strings.TrimSpace(innerText))
		if !ok {
			return nil, false
		}
		rec, ok := newRecord(outer, inner)
		if !ok {
			return nil, false
		}
		recs = append(recs, rec)
	}
	return recs, true
}

// parseObjectPairs pairs brace-scanned objects sequentially as
// (outer, inner). It needs an even count of at least four, all decodable.
func parseObjectPairs(text string) ([]Record, bool) {
	spans := jsonscan.ScanObjects(text)
	if len(spans) < 4 || len(spans)%2 != 0 {
		return nil, false
	}

	objs := make([]map[string]any, len(spans))
	for i, s := range spans {
		obj, ok := jsonscan.ParseObject(s)
		if !ok {
			return nil, false
		}
		objs[i] = obj
	}

	recs := make([]Record, 0, len(objs)/2)
	for i := 0; i+1 < len(objs); i += 2 {
		rec, ok := newRecord(objs[i], objs[i+1])
		if !ok {
			return nil, false
		}
		recs = append(recs, rec)
	}
	return recs, true
}

func newRecord(outer, inner map[string]any) (Record, bool) {
	typ, ok := coerce.String(outer["type"])
	if !ok {
		return Record{}, false
	}
	rec := Record{
		Outer: Outer{Type: typ, ID: coerce.StringOr(outer["id"], "")},
		Inner: inner,
	}
	if n, ok := coerce.IsNumber(outer["ticket"]); ok {
		t := int64(n)
		rec.Outer.Ticket = &t
	}
	return rec, true
}

// DocType returns inner.docType of the first DOCHEAD record.
func DocType(recs []Record) (string, bool) {
	for _, r := range recs {
		if r.Outer.Type == "DOCHEAD" {
			return coerce.String(r.Inner["docType"])
		}
	}
	return "", false
}

// Origin returns the CANVAS record's origin, or (0, 0).
func Origin(recs []Record) (x, y float64) {
	for _, r := range recs {
		if r.Outer.Type == "CANVAS" {
			return coerce.Number(r.Inner["originX"], 0), coerce.Number(r.Inner["originY"], 0)
		}
	}
	return 0, 0
}
