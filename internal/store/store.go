// Package store persists extracted library documents in SQLite so repeated
// batches skip fetching and extraction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/libgest/internal/libdoc"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	kind         TEXT NOT NULL,
	library_uuid TEXT NOT NULL,
	uuid         TEXT NOT NULL,
	doc_type     TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	payload      TEXT NOT NULL,
	updated_at   INTEGER NOT NULL,
	PRIMARY KEY (kind, library_uuid, uuid)
)`

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Entry is one persisted extraction.
type Entry struct {
	Kind        libdoc.Kind
	Ref         libdoc.LibraryRef
	DocType     string
	ContentHash string
	Extraction  *libdoc.Extraction
	UpdatedAt   time.Time
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored extraction, or ok=false when absent.
func (s *Store) Get(ctx context.Context, kind libdoc.Kind, ref libdoc.LibraryRef) (*libdoc.Extraction, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM extractions WHERE kind = ? AND library_uuid = ? AND uuid = ?`,
		string(kind), ref.LibraryUUID, ref.UUID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get extraction %s:%s: %w", kind, ref.Key(), err)
	}

	var ext libdoc.Extraction
	if err := json.Unmarshal([]byte(payload), &ext); err != nil {
		return nil, false, fmt.Errorf("decode extraction %s:%s: %w", kind, ref.Key(), err)
	}
	return &ext, true, nil
}

// Put inserts or replaces an extraction.
func (s *Store) Put(ctx context.Context, kind libdoc.Kind, ref libdoc.LibraryRef, ext *libdoc.Extraction, contentHash string) error {
	payload, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("encode extraction: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extractions (kind, library_uuid, uuid, doc_type, content_hash, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, library_uuid, uuid) DO UPDATE SET
			doc_type = excluded.doc_type,
			content_hash = excluded.content_hash,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		string(kind), ref.LibraryUUID, ref.UUID, ext.Head.DocType, contentHash, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("put extraction %s:%s: %w", kind, ref.Key(), err)
	}
	return nil
}

// Delete removes an extraction. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, kind libdoc.Kind, ref libdoc.LibraryRef) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM extractions WHERE kind = ? AND library_uuid = ? AND uuid = ?`,
		string(kind), ref.LibraryUUID, ref.UUID,
	)
	if err != nil {
		return fmt.Errorf("delete extraction %s:%s: %w", kind, ref.Key(), err)
	}
	return nil
}

// List returns entries of one kind, most recently updated first. A limit of
// zero or less means no limit.
func (s *Store) List(ctx context.Context, kind libdoc.Kind, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT library_uuid, uuid, doc_type, content_hash, payload, updated_at
		FROM extractions WHERE kind = ?
		ORDER BY updated_at DESC, library_uuid, uuid
		LIMIT ?`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			payload string
			updated int64
		)
		if err := rows.Scan(&e.Ref.LibraryUUID, &e.Ref.UUID, &e.DocType, &e.ContentHash, &payload, &updated); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		var ext libdoc.Extraction
		if err := json.Unmarshal([]byte(payload), &ext); err != nil {
			return nil, fmt.Errorf("decode extraction %s: %w", e.Ref.Key(), err)
		}
		e.Kind = kind
		e.Extraction = &ext
		e.UpdatedAt = time.Unix(updated, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored extractions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM extractions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count extractions: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
