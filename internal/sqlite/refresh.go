package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/repository"
)

// RefreshRepository implements refresh.Repository for SQLite
type RefreshRepository struct {
	db *DB
}

// NewRefreshRepository creates a new RefreshRepository
func NewRefreshRepository(db *DB) *RefreshRepository {
	return &RefreshRepository{db: db}
}

// Log inserts a journal entry
func (r *RefreshRepository) Log(ctx context.Context, entry *refresh.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO refresh_log (
			id, seq, endpoint, outcome, organism_count, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		int64(entry.Seq),
		entry.Endpoint,
		string(entry.Outcome),
		entry.OrganismCount,
		entry.Error,
		entry.DurationMS,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log refresh: %w", err)
	}

	entry.CreatedAt = createdAt
	return nil
}

// List returns journal entries matching the given filters, newest first
func (r *RefreshRepository) List(ctx context.Context, opts refresh.ListOptions) ([]refresh.Entry, error) {
	query := `
		SELECT id, seq, endpoint, outcome, organism_count, error, duration_ms, created_at
		FROM refresh_log
	`

	var (
		args       []any
		conditions []string
	)
	if opts.Endpoint != "" {
		conditions = append(conditions, "endpoint = ?")
		args = append(args, opts.Endpoint)
	}
	if opts.Outcome != nil {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(*opts.Outcome))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list refreshes: %w", err)
	}
	defer rows.Close()

	var entries []refresh.Entry
	for rows.Next() {
		var (
			entry   refresh.Entry
			seq     int64
			outcome string
		)
		if err := rows.Scan(
			&entry.ID,
			&seq,
			&entry.Endpoint,
			&outcome,
			&entry.OrganismCount,
			&entry.Error,
			&entry.DurationMS,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan refresh entry: %w", err)
		}
		entry.Seq = uint64(seq)
		entry.Outcome = refresh.Outcome(outcome)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refresh rows: %w", err)
	}

	return entries, nil
}

// SaveLastGood replaces the cached document for an endpoint
func (r *RefreshRepository) SaveLastGood(ctx context.Context, snap *refresh.CachedSnapshot) error {
	query := `
		INSERT INTO snapshot_cache (endpoint, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at
	`

	if _, err := r.db.ExecContext(ctx, query, snap.Endpoint, snap.Body, snap.FetchedAt); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LastGood retrieves the cached document for an endpoint
func (r *RefreshRepository) LastGood(ctx context.Context, endpoint string) (*refresh.CachedSnapshot, error) {
	query := `
		SELECT endpoint, body, fetched_at
		FROM snapshot_cache
		WHERE endpoint = ?
	`

	var snap refresh.CachedSnapshot
	err := r.db.QueryRowContext(ctx, query, endpoint).Scan(&snap.Endpoint, &snap.Body, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &snap, nil
}
