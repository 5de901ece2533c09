package v3

import (
	"strings"

	"github.com/dgallion1/libgest/internal/coerce"
)

var fieldReplacer = strings.NewReplacer("^^", "_", "~", "_", "\r\n", " ", "\n", " ")

// sanitize makes free text safe to embed in a positional field.
func sanitize(s string) string {
	return strings.TrimSpace(fieldReplacer.Replace(s))
}

func strokeColor(v any) string {
	if s := strings.TrimSpace(coerce.Text(v)); s != "" {
		return s
	}
	return "#000000"
}

func fillColor(v any) string {
	if s := strings.TrimSpace(coerce.Text(v)); s != "" {
		return s
	}
	return "none"
}

func num(n float64) string {
	return coerce.FormatNumber(n)
}

func locked(inner map[string]any) string {
	return coerce.FlagDigit(coerce.Bool(inner["locked"], false))
}

// flatPoints accepts a flat numeric list or a list of {x,y} / {centerX,centerY}
// objects and returns the space-joined coordinates, or "" when fewer than two
// points could be assembled.
func flatPoints(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	var vals []string
	for _, item := range items {
		if n, ok := coerce.IsNumber(item); ok {
			vals = append(vals, num(n))
			continue
		}
		obj, ok := coerce.Record(item)
		if !ok {
			continue
		}
		if x, okx := coerce.IsNumber(obj["x"]); okx {
			if y, oky := coerce.IsNumber(obj["y"]); oky {
				vals = append(vals, num(x), num(y))
				continue
			}
		}
		if x, okx := coerce.IsNumber(obj["centerX"]); okx {
			if y, oky := coerce.IsNumber(obj["centerY"]); oky {
				vals = append(vals, num(x), num(y))
			}
		}
	}
	if len(vals) < 4 {
		return ""
	}
	return strings.Join(vals, " ")
}
