package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgallion1/libgest/internal/libdoc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "extractions.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleExtraction(docType string, lines ...string) *libdoc.Extraction {
	return &libdoc.Extraction{
		Head:  libdoc.NewHead(map[string]any{"docType": docType, "c_para": map[string]any{"package": "SOT-23"}}),
		Shape: libdoc.ParseShapeLines(lines),
	}
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ref := libdoc.LibraryRef{LibraryUUID: "lib", UUID: "fp1"}

	if _, ok, err := s.Get(ctx, libdoc.KindFootprint, ref); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := sampleExtraction("FOOTPRINT", "PAD~RECT~0~0~1~1~1~~1~0~~0~p1~0~~Y~0", `__JSON__{"type":"HOLE"}`)
	if err := s.Put(ctx, libdoc.KindFootprint, ref, want, "hash1"); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Get(ctx, libdoc.KindFootprint, ref)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Head.DocType != "FOOTPRINT" {
		t.Errorf("expected docType FOOTPRINT, got %q", got.Head.DocType)
	}
	if pkg, _ := got.Head.CPara("package"); pkg != "SOT-23" {
		t.Errorf("expected package SOT-23, got %q", pkg)
	}
	if len(got.Shape) != 2 || got.Shape[1].String() != `__JSON__{"type":"HOLE"}` {
		t.Errorf("unexpected shape lines: %v", got.Lines())
	}

	if _, ok, _ := s.Get(ctx, libdoc.KindSymbol, ref); ok {
		t.Error("expected kinds to be stored separately")
	}
}

func TestStore_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ref := libdoc.LibraryRef{LibraryUUID: "lib", UUID: "sym1"}

	if err := s.Put(ctx, libdoc.KindSymbol, ref, sampleExtraction("SYMBOL", "R~0~0~0~0~1~1~#000~1~~none~r~0"), "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, libdoc.KindSymbol, ref, sampleExtraction("SYMBOL"), "b"); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 row after upsert, got %d", n)
	}

	entries, err := s.List(ctx, libdoc.KindSymbol, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ContentHash != "b" || len(entries[0].Extraction.Shape) != 0 {
		t.Errorf("expected replaced entry, got hash=%q shape=%d", entries[0].ContentHash, len(entries[0].Extraction.Shape))
	}
	if entries[0].DocType != "SYMBOL" {
		t.Errorf("expected docType SYMBOL, got %q", entries[0].DocType)
	}
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ref := libdoc.LibraryRef{LibraryUUID: "lib", UUID: "x"}

	if err := s.Put(ctx, libdoc.KindSymbol, ref, sampleExtraction("SYMBOL"), ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, libdoc.KindSymbol, ref); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, libdoc.KindSymbol, ref); err != nil {
		t.Errorf("expected deleting a missing row to succeed, got %v", err)
	}
	if _, ok, _ := s.Get(ctx, libdoc.KindSymbol, ref); ok {
		t.Error("expected row to be deleted")
	}
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ref := libdoc.LibraryRef{LibraryUUID: "lib", UUID: "m"}
	if err := s.Put(context.Background(), libdoc.KindSymbol, ref, sampleExtraction("SYMBOL"), ""); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Get(context.Background(), libdoc.KindSymbol, ref); err != nil || !ok {
		t.Errorf("expected in-memory hit, got ok=%v err=%v", ok, err)
	}
}
