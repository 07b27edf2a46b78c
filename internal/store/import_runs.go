package store

import (
	"fmt"
	"time"

	"testhub/internal/model"
)

// CreateImportRun inserts a run in the running state.
func (s *Store) CreateImportRun(run *model.ImportRun) error {
	_, err := s.db.Exec(`
		INSERT INTO import_runs (id, project_id, kind, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.ProjectID, run.Kind, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

// FinishImportRun records the terminal state and counters of a run.
func (s *Store) FinishImportRun(run *model.ImportRun) error {
	now := time.Now()
	run.FinishedAt = &now
	_, err := s.db.Exec(`
		UPDATE import_runs SET
			status = ?, finished_at = ?, imported_count = ?, updated_count = ?,
			skipped_count = ?, error_message = ?, log_output = ?
		WHERE id = ?
	`, run.Status, run.FinishedAt, run.ImportedCount, run.UpdatedCount,
		run.SkippedCount, run.ErrorMessage, run.LogOutput, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	return nil
}

// ListImportRuns returns the most recent runs of a project, newest
// first.
func (s *Store) ListImportRuns(projectID int64, limit int) ([]*model.ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, project_id, kind, status, started_at, finished_at,
			imported_count, updated_count, skipped_count, error_message, log_output
		FROM import_runs WHERE project_id = ?
		ORDER BY started_at DESC LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Kind, &r.Status, &r.StartedAt,
			&r.FinishedAt, &r.ImportedCount, &r.UpdatedCount, &r.SkippedCount,
			&r.ErrorMessage, &r.LogOutput); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
