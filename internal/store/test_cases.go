package store

import (
	"database/sql"
	"errors"
	"fmt"

	"testhub/internal/model"
)

// CreateTestCase inserts a test case and returns it with its id set.
func (s *Store) CreateTestCase(tc *model.TestCase) error {
	res, err := s.db.Exec(`
		INSERT INTO test_cases (
			task_id, title, test_type, function, target, description,
			acceptance_criteria_url, user_story_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tc.TaskID, tc.Title, tc.TestType, tc.Function, tc.Target, tc.Description,
		tc.AcceptanceCriteriaURL, tc.UserStoryURL)
	if err != nil {
		return fmt.Errorf("failed to create test case: %w", err)
	}
	tc.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get test case id: %w", err)
	}
	return nil
}

// UpdateTestCase rewrites the attribute columns of a test case.
func (s *Store) UpdateTestCase(tc *model.TestCase) error {
	_, err := s.db.Exec(`
		UPDATE test_cases SET
			test_type = ?, function = ?, target = ?, description = ?,
			acceptance_criteria_url = ?, user_story_url = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, tc.TestType, tc.Function, tc.Target, tc.Description,
		tc.AcceptanceCriteriaURL, tc.UserStoryURL, tc.ID)
	if err != nil {
		return fmt.Errorf("failed to update test case: %w", err)
	}
	return nil
}

// GetTestCaseByTitle loads the test case with the given natural key.
// Returns (nil, nil) when absent.
func (s *Store) GetTestCaseByTitle(taskID int64, title string) (*model.TestCase, error) {
	row := s.db.QueryRow(`
		SELECT id, task_id, title, test_type, function, target, description,
			acceptance_criteria_url, user_story_url
		FROM test_cases WHERE task_id = ? AND title = ?
	`, taskID, title)

	var tc model.TestCase
	err := row.Scan(&tc.ID, &tc.TaskID, &tc.Title, &tc.TestType, &tc.Function,
		&tc.Target, &tc.Description, &tc.AcceptanceCriteriaURL, &tc.UserStoryURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan test case: %w", err)
	}
	return &tc, nil
}

// ListTestCases returns every test case of a task ordered by id.
func (s *Store) ListTestCases(taskID int64) ([]*model.TestCase, error) {
	rows, err := s.db.Query(`
		SELECT id, task_id, title, test_type, function, target, description,
			acceptance_criteria_url, user_story_url
		FROM test_cases WHERE task_id = ? ORDER BY id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var cases []*model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.TaskID, &tc.Title, &tc.TestType, &tc.Function,
			&tc.Target, &tc.Description, &tc.AcceptanceCriteriaURL, &tc.UserStoryURL); err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		cases = append(cases, &tc)
	}
	return cases, rows.Err()
}

// CountTestCases counts the test cases attached to a task.
func (s *Store) CountTestCases(taskID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM test_cases WHERE task_id = ?`, taskID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count test cases: %w", err)
	}
	return n, nil
}

// ReplaceTestStep replaces the whole step tree of a test case with a
// single step holding the given action and expectation lines, in order.
func (s *Store) ReplaceTestStep(caseID int64, actions, expectations []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM test_step_contents WHERE step_id IN
			(SELECT id FROM test_steps WHERE case_id = ?)
	`, caseID); err != nil {
		return fmt.Errorf("failed to delete step contents: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM test_steps WHERE case_id = ?`, caseID); err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}

	if len(actions) == 0 && len(expectations) == 0 {
		return tx.Commit()
	}

	res, err := tx.Exec(`
		INSERT INTO test_steps (case_id, step_number, description) VALUES (?, 1, '')
	`, caseID)
	if err != nil {
		return fmt.Errorf("failed to insert step: %w", err)
	}
	stepID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get step id: %w", err)
	}

	order := 0
	insert := func(category string, lines []string) error {
		for _, line := range lines {
			order++
			if _, err := tx.Exec(`
				INSERT INTO test_step_contents (step_id, content_value, content_category, display_order)
				VALUES (?, ?, ?, ?)
			`, stepID, line, category, order); err != nil {
				return fmt.Errorf("failed to insert step content: %w", err)
			}
		}
		return nil
	}
	if err := insert(model.ContentCategoryAction, actions); err != nil {
		return err
	}
	if err := insert(model.ContentCategoryExpectation, expectations); err != nil {
		return err
	}
	return tx.Commit()
}

// ListStepContents returns the ordered content lines of a test case's
// steps.
func (s *Store) ListStepContents(caseID int64) ([]*model.TestStepContent, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.step_id, c.content_type, c.content_value, c.content_category, c.display_order
		FROM test_step_contents c
		JOIN test_steps st ON st.id = c.step_id
		WHERE st.case_id = ?
		ORDER BY c.display_order
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list step contents: %w", err)
	}
	defer rows.Close()

	var contents []*model.TestStepContent
	for rows.Next() {
		var c model.TestStepContent
		if err := rows.Scan(&c.ID, &c.StepID, &c.ContentType, &c.ContentValue,
			&c.ContentCategory, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan step content: %w", err)
		}
		contents = append(contents, &c)
	}
	return contents, rows.Err()
}

// ReplaceDeviceResult replaces the recorded result for one device lane
// of a test case.
func (s *Store) ReplaceDeviceResult(caseID int64, device string, status model.TestStatus, rawValue string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM test_results WHERE case_id = ? AND device = ?
	`, caseID, device); err != nil {
		return fmt.Errorf("failed to delete device result: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO test_results (case_id, device, status, raw_value)
		VALUES (?, ?, ?, ?)
	`, caseID, device, status, rawValue); err != nil {
		return fmt.Errorf("failed to insert device result: %w", err)
	}
	return tx.Commit()
}

// ListTestResults returns the device results of a test case ordered by
// device name.
func (s *Store) ListTestResults(caseID int64) ([]*model.TestResult, error) {
	rows, err := s.db.Query(`
		SELECT id, case_id, device, status, raw_value, executed_at
		FROM test_results WHERE case_id = ? ORDER BY device
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}
	defer rows.Close()

	var results []*model.TestResult
	for rows.Next() {
		var r model.TestResult
		if err := rows.Scan(&r.ID, &r.CaseID, &r.Device, &r.Status, &r.RawValue, &r.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// DeleteTestCasesByTask removes every test case of a task along with its
// steps and results.
func (s *Store) DeleteTestCasesByTask(taskID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM test_step_contents WHERE step_id IN (
			SELECT st.id FROM test_steps st
			JOIN test_cases tc ON tc.id = st.case_id
			WHERE tc.task_id = ?
		)
	`, taskID); err != nil {
		return fmt.Errorf("failed to delete step contents: %w", err)
	}
	if _, err := tx.Exec(`
		DELETE FROM test_steps WHERE case_id IN (SELECT id FROM test_cases WHERE task_id = ?)
	`, taskID); err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}
	if _, err := tx.Exec(`
		DELETE FROM test_results WHERE case_id IN (SELECT id FROM test_cases WHERE task_id = ?)
	`, taskID); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM test_cases WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to delete test cases: %w", err)
	}
	return tx.Commit()
}
