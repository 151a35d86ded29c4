// Package store keeps structured documents in a SQLite database.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dgallion1/mdgen/internal/document"
)

// ErrNotFound is returned for an unknown document ID.
var ErrNotFound = errors.New("document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	sections     INTEGER NOT NULL,
	items        INTEGER NOT NULL,
	body         BLOB NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
)`

// Record describes a stored document.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	Sections    int       `json:"sections"`
	Items       int       `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// Open opens or creates the database file at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s, err := New(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates the table if needed.
func New(db *sql.DB, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// NewID returns a fresh document ID.
func NewID() string { return uuid.NewString() }

// Put stores tree under id, replacing any earlier version. An empty id
// allocates a new one.
func (s *Store) Put(ctx context.Context, id string, tree *document.Tree) (Record, error) {
	if id == "" {
		id = NewID()
	} else if _, err := uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("invalid document id %q: %w", id, err)
	}

	var body bytes.Buffer
	if err := tree.SaveStructured(&body); err != nil {
		return Record{}, err
	}
	stats := tree.Stats()
	now := s.now()
	rec := Record{
		ID:          id,
		Title:       tree.Title(),
		ContentHash: ContentHashHex(body.Bytes()),
		Sections:    stats.Sections,
		Items:       stats.Total(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO documents (id, title, content_hash, sections, items, body, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	content_hash = excluded.content_hash,
	sections = excluded.sections,
	items = excluded.items,
	body = excluded.body,
	updated_at = excluded.updated_at`,
		rec.ID, rec.Title, rec.ContentHash, rec.Sections, rec.Items, body.Bytes(), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("store document %s: %w", id, err)
	}

	// created_at survives an update.
	stored, err := s.Record(ctx, id)
	if err != nil {
		return Record{}, err
	}
	s.log.Info("document stored", "id", id, "hash", rec.ContentHash, "sections", rec.Sections, "items", rec.Items)
	return stored, nil
}

// Record returns the metadata of a stored document.
func (s *Store) Record(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, content_hash, sections, items, created_at, updated_at
FROM documents WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read document %s: %w", id, err)
	}
	return rec, nil
}

// Get loads a stored document. opts configure the returned tree's output
// location and figures.
func (s *Store) Get(ctx context.Context, id string, opts ...document.Option) (*document.Tree, Record, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return nil, Record{}, err
	}
	var body []byte
	if err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Record{}, ErrNotFound
		}
		return nil, Record{}, fmt.Errorf("read document %s: %w", id, err)
	}
	tree, err := document.Load(bytes.NewReader(body), opts...)
	if err != nil {
		return nil, Record{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return tree, rec, nil
}

// List returns every stored document, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content_hash, sections, items, created_at, updated_at
FROM documents ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a stored document.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Info("document deleted", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Title, &rec.ContentHash, &rec.Sections, &rec.Items, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
