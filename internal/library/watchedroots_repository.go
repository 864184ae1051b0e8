package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrWatchedRootNotFound = errors.New("watched root not found")

// WatchedRoot is a directory the scanner indexes and watches for changes.
type WatchedRoot struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt"`
}

type WatchedRootRepository struct {
	db *sql.DB
}

func NewWatchedRootRepository(database *sql.DB) *WatchedRootRepository {
	return &WatchedRootRepository{db: database}
}

func (r *WatchedRootRepository) List(ctx context.Context) ([]WatchedRoot, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT id, path, enabled, created_at FROM watched_roots ORDER BY path COLLATE NOCASE",
	)
	if err != nil {
		return nil, fmt.Errorf("list watched roots: %w", err)
	}
	defer rows.Close()

	roots := make([]WatchedRoot, 0)
	for rows.Next() {
		root, err := scanWatchedRoot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan watched root: %w", err)
		}
		roots = append(roots, root)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watched roots: %w", err)
	}

	return roots, nil
}

// Add registers a new enabled root. The returned value is built from the
// insert itself; no read-back round trip.
func (r *WatchedRootRepository) Add(ctx context.Context, path string) (WatchedRoot, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return WatchedRoot{}, errors.New("path is required")
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(
		ctx,
		"INSERT INTO watched_roots(path, enabled, created_at) VALUES (?, 1, ?)",
		trimmed, createdAt,
	)
	if err != nil {
		return WatchedRoot{}, fmt.Errorf("add watched root %q: %w", trimmed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return WatchedRoot{}, fmt.Errorf("read watched root id: %w", err)
	}

	return WatchedRoot{ID: id, Path: trimmed, Enabled: true, CreatedAt: createdAt}, nil
}

func (r *WatchedRootRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	flag := 0
	if enabled {
		flag = 1
	}

	return r.mutate(ctx, "toggle watched root", "UPDATE watched_roots SET enabled = ? WHERE id = ?", flag, id)
}

func (r *WatchedRootRepository) Delete(ctx context.Context, id int64) error {
	return r.mutate(ctx, "delete watched root", "DELETE FROM watched_roots WHERE id = ?", id)
}

// mutate runs a single-row statement whose last argument is the root id and
// maps a zero-row outcome to ErrWatchedRootNotFound.
func (r *WatchedRootRepository) mutate(ctx context.Context, op string, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return ErrWatchedRootNotFound
	}

	return nil
}

func scanWatchedRoot(scan func(dest ...any) error) (WatchedRoot, error) {
	var root WatchedRoot
	var enabled int
	if err := scan(&root.ID, &root.Path, &enabled, &root.CreatedAt); err != nil {
		return WatchedRoot{}, err
	}

	root.Enabled = enabled == 1
	return root, nil
}
