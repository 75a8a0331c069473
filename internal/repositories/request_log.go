package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// RequestLogEntry is one request recorded by the reference store.
type RequestLogEntry struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	CreatedAt time.Time
}

// RequestLogRepository persists [RequestLogEntry] rows in the request_log table.
type RequestLogRepository struct {
	db *sql.DB
}

// NewRequestLogRepository creates a new [RequestLogRepository] with the given database connection
func NewRequestLogRepository(db *sql.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// Record inserts an entry. A zero CreatedAt is set to now.
func (r *RequestLogRepository) Record(entry RequestLogEntry) error {
	if entry.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO request_log (request_id, method, path, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.RequestID, entry.Method, entry.Path, entry.Status, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request log entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *RequestLogRepository) Recent(limit int) ([]RequestLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT request_id, method, path, status, created_at
		FROM request_log
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query request log: %w", err)
	}
	defer rows.Close()

	var entries []RequestLogEntry
	for rows.Next() {
		var e RequestLogEntry
		if err := rows.Scan(&e.RequestID, &e.Method, &e.Path, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request log entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
