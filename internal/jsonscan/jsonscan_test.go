package jsonscan

import (
	"reflect"
	"testing"
)

func TestScanObjects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"quoted brace", `{"a":"}"} {"b":1}`, []string{`{"a":"}"}`, `{"b":1}`}},
		{"escaped quote", `x{"a":"\"}"}y`, []string{`{"a":"\"}"}`}},
		{"nested", `{"a":{"b":{}}}`, []string{`{"a":{"b":{}}}`}},
		{"unterminated dropped", `{"a":1} {"b":`, []string{`{"a":1}`}},
		{"stray closer", `} {"a":1}`, []string{`{"a":1}`}},
		{"invalid json kept", `{nope}`, []string{`{nope}`}},
		{"none", `plain text`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScanObjects(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSplitPipes_DeclinesSingleSegment(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `{"a":1}||`, `|| {"a":1} ||   `} {
		if _, ok := SplitPipes(in); ok {
			t.Errorf("expected %q to decline", in)
		}
	}
}

func TestSplitPipes_Tiers(t *testing.T) {
	segs, ok := SplitPipes(`{"type":"DOCHEAD"} || garbage {"a":1} {"b":2} || x|["c"]|y || just text`)
	if !ok {
		t.Fatal("expected pipe-formatted document")
	}
	if len(segs.Raw) != 4 || len(segs.Parsed) != 4 {
		t.Fatalf("expected 4 aligned segments, got raw=%d parsed=%d", len(segs.Raw), len(segs.Parsed))
	}

	if m, ok := segs.Parsed[0].(map[string]any); !ok || m["type"] != "DOCHEAD" {
		t.Errorf("expected whole-segment object, got %#v", segs.Parsed[0])
	}
	if list, ok := segs.Parsed[1].([]any); !ok || len(list) != 2 {
		t.Errorf("expected two brace-recovered objects, got %#v", segs.Parsed[1])
	}
	if list, ok := segs.Parsed[2].([]any); !ok || len(list) != 1 || list[0] != "c" {
		t.Errorf("expected single-pipe recovery, got %#v", segs.Parsed[2])
	}
	if segs.Parsed[3] != "just text" {
		t.Errorf("expected raw trimmed text, got %#v", segs.Parsed[3])
	}
	if segs.Raw[3] != "just text" {
		t.Errorf("expected trimmed raw segment, got %q", segs.Raw[3])
	}
}

func TestParseEmbedded(t *testing.T) {
	if _, ok := ParseEmbedded("42"); ok {
		t.Error("expected bare number to be rejected")
	}
	if v, ok := ParseEmbedded(` "s" `); !ok || v != "s" {
		t.Errorf("expected quoted string, got %#v", v)
	}
	if v, ok := ParseEmbedded("[1]"); !ok || len(v.([]any)) != 1 {
		t.Errorf("expected array, got %#v", v)
	}
}
