// Package sqlite implements the memory history log on an embedded sqlite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"recall-backend/domain/core/entities"
	"recall-backend/pkg/utils"

	_ "modernc.org/sqlite"
)

// HistoryStore records every change made to a memory.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (and if needed creates) the history database.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *HistoryStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			memory_id TEXT NOT NULL,
			previous_value TEXT,
			new_value TEXT,
			event TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_memory_id ON history(memory_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Append inserts a history entry.
func (s *HistoryStore) Append(ctx context.Context, entry *entities.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, memory_id, previous_value, new_value, event, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.MemoryID, entry.PreviousValue, entry.NewValue, entry.Event, utils.FormatRFC3339(entry.CreatedAt))

	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ByMemoryID returns the change log of a memory, oldest first.
func (s *HistoryStore) ByMemoryID(ctx context.Context, memoryID string) ([]*entities.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, memory_id, previous_value, new_value, event, created_at
		FROM history
		WHERE memory_id = ?
		ORDER BY rowid ASC
	`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []*entities.HistoryEntry{}
	for rows.Next() {
		entry := &entities.HistoryEntry{}
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.MemoryID, &entry.PreviousValue,
			&entry.NewValue, &entry.Event, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if entry.CreatedAt, err = utils.ParseRFC3339(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse history timestamp: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Reset drops all history entries.
func (s *HistoryStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	return nil
}
