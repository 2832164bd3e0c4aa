// Package store keeps saved bundles in a local SQLite database keyed by form
// id. It stands in for the remote persistence service: a bundle saved here is
// what Replay needs to rebuild the wizard.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formwizard/pkg/bundle"
	"github.com/goliatone/go-formwizard/pkg/routing"
)

// ErrNotFound is returned when no bundle exists for a form id.
var ErrNotFound = errors.New("store: bundle not found")

const schema = `
CREATE TABLE IF NOT EXISTS bundles (
	form_id    TEXT PRIMARY KEY,
	html       TEXT NOT NULL,
	routing    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store persists bundles.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts or replaces the bundle of b.FormID.
func (s *Store) Save(ctx context.Context, b bundle.Bundle) error {
	if b.FormID == "" {
		return bundle.ErrFormIDRequired
	}
	doc, err := routing.EncodeJSON(b.Routing)
	if err != nil {
		return fmt.Errorf("store: save %q: %w", b.FormID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bundles (form_id, html, routing, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(form_id) DO UPDATE SET
			html = excluded.html,
			routing = excluded.routing,
			updated_at = excluded.updated_at`,
		b.FormID, b.HTML, string(doc), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: save %q: %w", b.FormID, err)
	}
	return nil
}

// Load returns the bundle of formID.
func (s *Store) Load(ctx context.Context, formID string) (bundle.Bundle, error) {
	var html, doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT html, routing FROM bundles WHERE form_id = ?`, formID,
	).Scan(&html, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return bundle.Bundle{}, fmt.Errorf("%w: %q", ErrNotFound, formID)
	}
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("store: load %q: %w", formID, err)
	}

	routingDoc, err := routing.DecodeDocument([]byte(doc), formID)
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("store: load %q: %w", formID, err)
	}
	return bundle.Bundle{FormID: formID, HTML: html, Routing: routingDoc}, nil
}

// List returns the stored form ids, most recently saved first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT form_id FROM bundles ORDER BY updated_at DESC, form_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return ids, nil
}

// Delete removes the bundle of formID. Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, formID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bundles WHERE form_id = ?`, formID); err != nil {
		return fmt.Errorf("store: delete %q: %w", formID, err)
	}
	return nil
}
