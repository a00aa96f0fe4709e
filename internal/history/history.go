package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200

	// pruneInterval is how often RunPruner applies the retention window.
	pruneInterval = 24 * time.Hour
)

// Logger is the subset of logging the pruner reports through.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// schema bootstraps the readings table. Snapshots are stored as JSON;
// queries only ever filter by thing and time, so no per-property
// columns are needed.
const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	thing_id TEXT NOT NULL,
	state TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_readings_thing_time
	ON readings (thing_id, created_at DESC);
`

// Entry is one recorded poll snapshot.
type Entry struct {
	ID        int64          `json:"id"`
	ThingID   string         `json:"thing_id"`
	State     map[string]any `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
}

// Repository persists poll snapshots in SQLite.
//
// It stores the property values of each completed poll as JSON in the
// readings table, newest-first retrieval, with pruning for retention.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a readings repository over an open connection.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *Repository: Repository instance ready for Init
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init creates the readings table and index if they do not exist.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating readings schema: %w", err)
	}
	return nil
}

// RecordReading inserts one poll snapshot for a thing.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - thingID: External thing identifier
//   - state: Property values from the completed poll
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *Repository) RecordReading(ctx context.Context, thingID string, state map[string]any) error {
	if thingID == "" {
		return fmt.Errorf("thing id is required")
	}
	if state == nil {
		state = map[string]any{}
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO readings (thing_id, state, created_at) VALUES (?, ?, ?)",
		thingID,
		string(stateJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}

	return nil
}

// GetHistory returns recent snapshots for a thing, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - thingID: External thing identifier
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: Snapshots ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *Repository) GetHistory(ctx context.Context, thingID string, limit int) ([]Entry, error) {
	if thingID == "" {
		return nil, fmt.Errorf("thing id is required")
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, thing_id, state, created_at
		 FROM readings
		 WHERE thing_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		thingID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var stateJSON string
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.ThingID, &stateJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}

		if err := json.Unmarshal([]byte(stateJSON), &entry.State); err != nil {
			return nil, fmt.Errorf("unmarshalling state: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}

	return entries, nil
}

// Prune deletes snapshots older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Retention window; older entries are deleted
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM readings WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting readings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// RunPruner applies the retention window once immediately and then
// every 24 hours until ctx is cancelled. A non-positive retention
// disables pruning and returns at once. Blocks; run in a goroutine.
//
// Parameters:
//   - ctx: Cancelling this context stops the pruner
//   - retention: Readings older than this are deleted on each pass
//   - logger: Receives prune results and failures
func (r *Repository) RunPruner(ctx context.Context, retention time.Duration, logger Logger) {
	if retention <= 0 {
		return
	}

	for {
		deleted, err := r.Prune(ctx, retention)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Error("pruning reading history", "error", err)
		case deleted > 0:
			logger.Info("pruned reading history",
				"deleted", deleted,
				"retention", retention.String())
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pruneInterval):
		}
	}
}
