package store

import (
	"database/sql"
	"errors"
	"fmt"

	"testhub/internal/model"
)

// CreateBug inserts a bug and returns it with its id set.
func (s *Store) CreateBug(b *model.Bug) error {
	res, err := s.db.Exec(`
		INSERT INTO bugs (
			task_id, title, content, application, category, priority,
			status, bug_type, image_video_url, dev_name, tester_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.TaskID, b.Title, b.Content, b.Application, b.Category, b.Priority,
		b.Status, b.BugType, b.ImageVideoURL, b.DevName, b.TesterName)
	if err != nil {
		return fmt.Errorf("failed to create bug: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get bug id: %w", err)
	}
	return nil
}

// UpdateBug rewrites the attribute columns of a bug.
func (s *Store) UpdateBug(b *model.Bug) error {
	_, err := s.db.Exec(`
		UPDATE bugs SET
			content = ?, application = ?, category = ?, priority = ?,
			status = ?, bug_type = ?, image_video_url = ?, dev_name = ?,
			tester_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, b.Content, b.Application, b.Category, b.Priority,
		b.Status, b.BugType, b.ImageVideoURL, b.DevName, b.TesterName, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bug: %w", err)
	}
	return nil
}

// GetBugByTitle loads the bug with the given natural key. Returns
// (nil, nil) when absent.
func (s *Store) GetBugByTitle(taskID int64, title string) (*model.Bug, error) {
	row := s.db.QueryRow(`
		SELECT id, task_id, title, content, application, category, priority,
			status, bug_type, image_video_url, dev_name, tester_name
		FROM bugs WHERE task_id = ? AND title = ?
	`, taskID, title)

	var b model.Bug
	err := row.Scan(&b.ID, &b.TaskID, &b.Title, &b.Content, &b.Application,
		&b.Category, &b.Priority, &b.Status, &b.BugType, &b.ImageVideoURL,
		&b.DevName, &b.TesterName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bug: %w", err)
	}
	return &b, nil
}

// ListBugs returns every bug of a task ordered by id.
func (s *Store) ListBugs(taskID int64) ([]*model.Bug, error) {
	rows, err := s.db.Query(`
		SELECT id, task_id, title, content, application, category, priority,
			status, bug_type, image_video_url, dev_name, tester_name
		FROM bugs WHERE task_id = ? ORDER BY id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bugs: %w", err)
	}
	defer rows.Close()

	var bugs []*model.Bug
	for rows.Next() {
		var b model.Bug
		if err := rows.Scan(&b.ID, &b.TaskID, &b.Title, &b.Content, &b.Application,
			&b.Category, &b.Priority, &b.Status, &b.BugType, &b.ImageVideoURL,
			&b.DevName, &b.TesterName); err != nil {
			return nil, fmt.Errorf("failed to scan bug: %w", err)
		}
		bugs = append(bugs, &b)
	}
	return bugs, rows.Err()
}

// CountBugsByCategory counts a task's bugs per environment bucket.
func (s *Store) CountBugsByCategory(taskID int64) (map[model.BugCategory]int, error) {
	rows, err := s.db.Query(`
		SELECT category, COUNT(*) FROM bugs WHERE task_id = ? GROUP BY category
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bugs: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.BugCategory]int)
	for rows.Next() {
		var category model.BugCategory
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan bug count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// DeleteBugsByTask removes every bug of a task.
func (s *Store) DeleteBugsByTask(taskID int64) error {
	if _, err := s.db.Exec(`DELETE FROM bugs WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to delete bugs: %w", err)
	}
	return nil
}
