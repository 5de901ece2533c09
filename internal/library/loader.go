// Package library loads library documents through a cache and assembles
// exported components from their symbol and footprint extractions.
package library

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/source"
)

const defaultCacheSize = 1024

// Persister is the durable layer behind the in-memory cache.
type Persister interface {
	Get(ctx context.Context, kind libdoc.Kind, ref libdoc.LibraryRef) (*libdoc.Extraction, bool, error)
	Put(ctx context.Context, kind libdoc.Kind, ref libdoc.LibraryRef, ext *libdoc.Extraction, contentHash string) error
}

type Options struct {
	CacheSize int
	Extractor *extract.Extractor
	Store     Persister
	Log       *slog.Logger
}

// Loader fetches and extracts library documents, caching results by
// kind:libraryUuid:uuid. Concurrent loads of the same document share one
// fetch.
type Loader struct {
	fetcher   source.Fetcher
	extractor *extract.Extractor
	store     Persister
	cache     *lru.Cache[string, *libdoc.Extraction]
	group     singleflight.Group
	stats     *FetchStats
	log       *slog.Logger
}

func NewLoader(f source.Fetcher, opts Options) (*Loader, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *libdoc.Extraction](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	ex := opts.Extractor
	if ex == nil {
		ex = extract.New(extract.Options{})
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		fetcher:   f,
		extractor: ex,
		store:     opts.Store,
		cache:     cache,
		stats:     NewFetchStats(time.Hour),
		log:       log,
	}, nil
}

// CacheKey is the identity of one document of one kind.
func CacheKey(kind libdoc.Kind, ref libdoc.LibraryRef) string {
	return string(kind) + ":" + ref.Key()
}

// Load returns the extraction for ref, consulting the cache, then the store,
// then the source.
func (l *Loader) Load(ctx context.Context, ref libdoc.LibraryRef, kind libdoc.Kind) (*libdoc.Extraction, error) {
	key := CacheKey(kind, ref)
	if ext, ok := l.cache.Get(key); ok {
		l.stats.CacheHit()
		return ext, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		return l.load(ctx, key, ref, kind)
	})
	if err != nil {
		return nil, err
	}
	return v.(*libdoc.Extraction), nil
}

func (l *Loader) load(ctx context.Context, key string, ref libdoc.LibraryRef, kind libdoc.Kind) (*libdoc.Extraction, error) {
	if l.store != nil {
		ext, ok, err := l.store.Get(ctx, kind, ref)
		if err != nil {
			l.log.Warn("store lookup failed", "key", key, "error", err)
		} else if ok {
			l.stats.StoreHit()
			l.cache.Add(key, ext)
			return ext, nil
		}
	}

	start := time.Now()
	src, err := l.fetcher.FetchSource(ctx, ref, kind)
	if err != nil {
		l.stats.Failure()
		return nil, fmt.Errorf("fetch %s source (%s/%s): %w", kind, ref.LibraryUUID, ref.UUID, err)
	}
	l.stats.Record(time.Since(start).Milliseconds())

	ext, err := l.extractor.Extract(src)
	if err != nil {
		l.stats.Failure()
		return nil, fmt.Errorf("parse %s source failed (%s/%s): %w", kind, ref.LibraryUUID, ref.UUID, err)
	}

	if l.store != nil {
		if err := l.store.Put(ctx, kind, ref, ext, ContentHashHex([]byte(src))); err != nil {
			l.log.Warn("store write failed", "key", key, "error", err)
		}
	}
	l.cache.Add(key, ext)
	l.log.Debug("loaded document", "key", key, "doc_type", ext.Head.DocType, "shapes", len(ext.Shape))
	return ext, nil
}

// Stats exposes fetch and cache counters.
func (l *Loader) Stats() *FetchStats {
	return l.stats
}

// Purge empties the in-memory cache and returns how many entries it held.
func (l *Loader) Purge() int {
	n := l.cache.Len()
	l.cache.Purge()
	return n
}

// Forget drops one document from the in-memory cache.
func (l *Loader) Forget(kind libdoc.Kind, ref libdoc.LibraryRef) bool {
	return l.cache.Remove(CacheKey(kind, ref))
}

// CacheLen reports the number of cached documents.
func (l *Loader) CacheLen() int {
	return l.cache.Len()
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
