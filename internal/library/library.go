// Package library persists asset records in SQLite. It is conventional CRUD
// glue around the engine: records exist so the scheduler knows what is still
// pending and the operator can list what was submitted.
package library

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/platform"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrAssetNotFound = errors.New("asset not found")

// Asset is one submitted asset record. ID and SubmittedAt are set once, at
// successful submission; Status transitions are written by resolver paths.
type Asset struct {
	ID            string          `json:"id"`
	Kind          platform.Kind   `json:"kind"`
	Status        platform.Status `json:"status"`
	DisplayName   string          `json:"display_name"`
	Description   string          `json:"description"`
	Tags          []string        `json:"tags"`
	GroupID       string          `json:"group_id,omitempty"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	LastCheckedAt time.Time       `json:"last_checked_at,omitempty"`
}

// Store is the SQLite-backed asset record store.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the store at path and applies the schema.
func Open(path string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open asset store %s: %w", path, err)
	}

	// Pragmas chosen for a single-operator local store.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Put inserts a record after successful submission. The record starts
// pending; inserting an existing ID is an error because platform identifiers
// are immutable once assigned.
func (s *Store) Put(ctx context.Context, a *Asset) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("asset record needs a platform identifier")
	}

	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if a.Status == "" {
		a.Status = platform.StatusPending
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO assets
		(id, kind, status, display_name, description, tags, group_id, submitted_at, last_checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Kind), string(a.Status), a.DisplayName, a.Description,
		string(tags), a.GroupID, a.SubmittedAt.Unix(), 0)
	if err != nil {
		return fmt.Errorf("insert asset %s: %w", a.ID, err)
	}
	return nil
}

// Get returns the record for id or ErrAssetNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, status, display_name, description, tags, group_id, submitted_at, last_checked_at
		FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	return a, err
}

// List returns records, newest first. status filters when non-empty; limit 0
// means no limit.
func (s *Store) List(ctx context.Context, status platform.Status, limit int) ([]*Asset, error) {
	q := `SELECT id, kind, status, display_name, description, tags, group_id, submitted_at, last_checked_at FROM assets`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY submitted_at DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus records a resolver judgment and bumps last_checked_at.
func (s *Store) UpdateStatus(ctx context.Context, id string, status platform.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assets SET status = ?, last_checked_at = ? WHERE id = ?`,
		string(status), time.Now().Unix(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// Touch bumps last_checked_at without changing status.
func (s *Store) Touch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assets SET last_checked_at = ? WHERE id = ?`, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// Delete removes the record after a successful withdrawal.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// DB exposes the underlying handle for components sharing the store file.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(r rowScanner) (*Asset, error) {
	var (
		a           Asset
		kind        string
		status      string
		tagsJSON    string
		submittedAt int64
		checkedAt   sql.NullInt64
	)
	if err := r.Scan(&a.ID, &kind, &status, &a.DisplayName, &a.Description,
		&tagsJSON, &a.GroupID, &submittedAt, &checkedAt); err != nil {
		return nil, err
	}

	a.Kind = platform.Kind(kind)
	a.Status = platform.Status(status)
	a.SubmittedAt = time.Unix(submittedAt, 0).UTC()
	if checkedAt.Valid && checkedAt.Int64 > 0 {
		a.LastCheckedAt = time.Unix(checkedAt.Int64, 0).UTC()
	}
	if err := json.Unmarshal([]byte(tagsJSON), &a.Tags); err != nil {
		a.Tags = nil
	}
	return &a, nil
}
