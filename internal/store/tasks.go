package store

import (
	"database/sql"
	"errors"
	"fmt"

	"testhub/internal/model"
)

const taskColumns = `
	id, project_id, parent_id, redmine_id, title, description, status,
	estimated_time, spent_time, percent_done, start_date, due_date,
	testcase_link, bug_link, number_of_test_cases,
	stg_bugs_vn, stg_bugs_jp, prod_bugs, created_by_name
`

// CreateTask inserts a task and returns it with its id set.
func (s *Store) CreateTask(t *model.Task) error {
	res, err := s.db.Exec(`
		INSERT INTO tasks (
			project_id, parent_id, redmine_id, title, description, status,
			estimated_time, spent_time, percent_done, start_date, due_date,
			testcase_link, bug_link, number_of_test_cases,
			stg_bugs_vn, stg_bugs_jp, prod_bugs, created_by_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ProjectID, t.ParentID, t.RedmineID, t.Title, t.Description, t.Status,
		t.EstimatedTime, t.SpentTime, t.PercentDone, t.StartDate, t.DueDate,
		t.TestcaseLink, t.BugLink, t.NumberOfTestCases,
		t.StgBugsVN, t.StgBugsJP, t.ProdBugs, t.CreatedByName)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get task id: %w", err)
	}
	return nil
}

// UpdateTask rewrites every mutable column of a task.
func (s *Store) UpdateTask(t *model.Task) error {
	_, err := s.db.Exec(`
		UPDATE tasks SET
			parent_id = ?, redmine_id = ?, title = ?, description = ?, status = ?,
			estimated_time = ?, spent_time = ?, percent_done = ?,
			start_date = ?, due_date = ?, testcase_link = ?, bug_link = ?,
			stg_bugs_vn = ?, stg_bugs_jp = ?, prod_bugs = ?, created_by_name = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, t.ParentID, t.RedmineID, t.Title, t.Description, t.Status,
		t.EstimatedTime, t.SpentTime, t.PercentDone,
		t.StartDate, t.DueDate, t.TestcaseLink, t.BugLink,
		t.StgBugsVN, t.StgBugsJP, t.ProdBugs, t.CreatedByName, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// GetTask loads one task by id. Returns (nil, nil) when absent.
func (s *Store) GetTask(id int64) (*model.Task, error) {
	return scanTask(s.db.QueryRow(`SELECT`+taskColumns+`FROM tasks WHERE id = ?`, id))
}

// GetTaskByTitle loads one task by project and title. Returns (nil, nil)
// when absent.
func (s *Store) GetTaskByTitle(projectID int64, title string) (*model.Task, error) {
	return scanTask(s.db.QueryRow(
		`SELECT`+taskColumns+`FROM tasks WHERE project_id = ? AND title = ?`,
		projectID, title))
}

// GetTaskByRedmineID loads one task by its Redmine issue id. Returns
// (nil, nil) when absent.
func (s *Store) GetTaskByRedmineID(projectID int64, redmineID string) (*model.Task, error) {
	return scanTask(s.db.QueryRow(
		`SELECT`+taskColumns+`FROM tasks WHERE project_id = ? AND redmine_id = ?`,
		projectID, redmineID))
}

// ListSubtasks returns the direct subtasks of a task.
func (s *Store) ListSubtasks(parentID int64) ([]*model.Task, error) {
	rows, err := s.db.Query(`SELECT`+taskColumns+`FROM tasks WHERE parent_id = ? ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListTasks returns every top-level task of a project.
func (s *Store) ListTasks(projectID int64) ([]*model.Task, error) {
	rows, err := s.db.Query(
		`SELECT`+taskColumns+`FROM tasks WHERE project_id = ? AND parent_id IS NULL ORDER BY id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskTestCaseCount refreshes the cached test-case counter of a
// task.
func (s *Store) UpdateTaskTestCaseCount(taskID int64) error {
	_, err := s.db.Exec(`
		UPDATE tasks SET number_of_test_cases =
			(SELECT COUNT(*) FROM test_cases WHERE task_id = ?)
		WHERE id = ?
	`, taskID, taskID)
	if err != nil {
		return fmt.Errorf("failed to update test case count: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskFields(sc rowScanner) (*model.Task, error) {
	var t model.Task
	err := sc.Scan(&t.ID, &t.ProjectID, &t.ParentID, &t.RedmineID, &t.Title,
		&t.Description, &t.Status, &t.EstimatedTime, &t.SpentTime, &t.PercentDone,
		&t.StartDate, &t.DueDate, &t.TestcaseLink, &t.BugLink, &t.NumberOfTestCases,
		&t.StgBugsVN, &t.StgBugsJP, &t.ProdBugs, &t.CreatedByName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTask(row *sql.Row) (*model.Task, error) {
	t, err := scanTaskFields(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return t, nil
}

func scanTaskRow(rows *sql.Rows) (*model.Task, error) {
	t, err := scanTaskFields(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return t, nil
}
