package store

import (
	"database/sql"
	"errors"
	"fmt"

	"testhub/internal/model"
)

// CreateProject inserts a project and returns it with its id set.
func (s *Store) CreateProject(p *model.Project) error {
	res, err := s.db.Exec(`
		INSERT INTO projects (name, redmine_project_id, daily_import_enabled)
		VALUES (?, ?, ?)
	`, p.Name, p.RedmineProjectID, p.DailyImportEnabled)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project id: %w", err)
	}
	return nil
}

// GetProject loads one project by id. Returns (nil, nil) when absent.
func (s *Store) GetProject(id int64) (*model.Project, error) {
	row := s.db.QueryRow(`
		SELECT id, name, redmine_project_id, daily_import_enabled, created_at
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

// GetProjectByName loads one project by name. Returns (nil, nil) when
// absent.
func (s *Store) GetProjectByName(name string) (*model.Project, error) {
	row := s.db.QueryRow(`
		SELECT id, name, redmine_project_id, daily_import_enabled, created_at
		FROM projects WHERE name = ?
	`, name)
	return scanProject(row)
}

// ListProjects returns every project ordered by name.
func (s *Store) ListProjects() ([]*model.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, name, redmine_project_id, daily_import_enabled, created_at
		FROM projects ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.RedmineProjectID, &p.DailyImportEnabled, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// ListDailyImportProjects returns projects with scheduled imports
// enabled.
func (s *Store) ListDailyImportProjects() ([]*model.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, name, redmine_project_id, daily_import_enabled, created_at
		FROM projects WHERE daily_import_enabled = 1 ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily import projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.RedmineProjectID, &p.DailyImportEnabled, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func scanProject(row *sql.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Name, &p.RedmineProjectID, &p.DailyImportEnabled, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}
