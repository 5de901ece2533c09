package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/libgest/internal/libdoc"
)

// DirFetcher reads documents from a local mirror laid out as
// <root>/<kind>/<libraryUuid>/<uuid>.json.
type DirFetcher struct {
	Root string
}

// FetchSource implements Fetcher.
func (d DirFetcher) FetchSource(ctx context.Context, ref libdoc.LibraryRef, kind libdoc.Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !ref.Valid() {
		return "", fmt.Errorf("fetch %s source: missing library or item uuid", kind)
	}
	if !safeComponent(ref.LibraryUUID) || !safeComponent(ref.UUID) {
		return "", fmt.Errorf("fetch %s source: invalid identifier in %s", kind, ref.Key())
	}

	path := filepath.Join(d.Root, string(kind), ref.LibraryUUID, ref.UUID+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s %s: %w", kind, ref.Key(), ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func safeComponent(s string) bool {
	return s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
