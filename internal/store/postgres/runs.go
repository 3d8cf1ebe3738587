package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketry/attendee-importer/internal/importer"
)

// ImportRun is one recorded run summary. Per-row outcomes are returned to
// the uploader but not persisted.
type ImportRun struct {
	ID        string                `json:"id"`
	Provider  importer.ProviderType `json:"provider"`
	FileName  string                `json:"fileName,omitempty"`
	Total     int                   `json:"total"`
	Created   int                   `json:"created"`
	Skipped   int                   `json:"skipped"`
	Duration  time.Duration         `json:"duration"`
	CreatedAt time.Time             `json:"createdAt"`
}

// RecordRun persists the summary of a finished run.
func (s *Store) RecordRun(ctx context.Context, res importer.RunResult) error {
	const q = `
		insert into import_runs (id, provider, file_name, total, created, skipped, duration_ms)
		values ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, q,
		res.RunID, res.Provider, res.FileName,
		res.Total, res.Created, res.Skipped,
		res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", res.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
		select id, provider, file_name, total, created, skipped, duration_ms, created_at
		from import_runs
		order by created_at desc
		limit $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []ImportRun{}
	for rows.Next() {
		var run ImportRun
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.Provider, &run.FileName,
			&run.Total, &run.Created, &run.Skipped, &durationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}
