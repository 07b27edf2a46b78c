// Package exporter writes a task's test cases back out as an xlsx
// workbook, in the same column layout the importer reads.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"testhub/internal/model"
	"testhub/internal/store"
)

// Exporter renders test-case workbooks from the store.
type Exporter struct {
	store *store.Store
}

// NewExporter creates an exporter.
func NewExporter(st *store.Store) *Exporter {
	return &Exporter{store: st}
}

// Export builds a workbook for the task: one sheet for the task itself
// when it has its own test cases, plus one per subtask. The caller owns
// closing the returned file.
func (e *Exporter) Export(task *model.Task) (*excelize.File, error) {
	f := excelize.NewFile()

	wrote := false
	if err := e.exportSheet(f, task, &wrote); err != nil {
		_ = f.Close()
		return nil, err
	}

	subtasks, err := e.store.ListSubtasks(task.ID)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, sub := range subtasks {
		if err := e.exportSheet(f, sub, &wrote); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if !wrote {
		if err := e.writeSheet(f, task, nil); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	// Drop excelize's default sheet when it was not reused.
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 && f.SheetCount > 1 {
		_ = f.DeleteSheet("Sheet1")
	}
	f.SetActiveSheet(0)
	return f, nil
}

func (e *Exporter) exportSheet(f *excelize.File, task *model.Task, wrote *bool) error {
	cases, err := e.store.ListTestCases(task.ID)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return nil
	}
	if err := e.writeSheet(f, task, cases); err != nil {
		return err
	}
	*wrote = true
	return nil
}

// writeSheet renders one sheet with the four-row header region the
// importer expects, a device-name row and one row per test case.
func (e *Exporter) writeSheet(f *excelize.File, task *model.Task, cases []*model.TestCase) error {
	sheet := sheetName(task.Title)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}

	// Collect the union of devices across the task's cases, keeping
	// first-seen order.
	var devices []string
	seen := map[string]bool{}
	results := make(map[int64]map[string]*model.TestResult, len(cases))
	for _, tc := range cases {
		rs, err := e.store.ListTestResults(tc.ID)
		if err != nil {
			return err
		}
		byDevice := make(map[string]*model.TestResult, len(rs))
		for _, r := range rs {
			byDevice[r.Device] = r
			if !seen[r.Device] {
				seen[r.Device] = true
				devices = append(devices, r.Device)
			}
		}
		results[tc.ID] = byDevice
	}

	if err := f.SetCellValue(sheet, "A1", task.Title); err != nil {
		return err
	}

	labels := []string{"No", "Type", "Function", "Test Case", "Action", "Expected Result", "Target"}
	for i, label := range labels {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
	}
	for i, device := range devices {
		cell, _ := excelize.CoordinatesToCellName(len(labels)+1+i, 5)
		if err := f.SetCellValue(sheet, cell, device); err != nil {
			return err
		}
	}

	for rowIdx, tc := range cases {
		row := 6 + rowIdx
		contents, err := e.store.ListStepContents(tc.ID)
		if err != nil {
			return err
		}
		var actions, expectations string
		for _, c := range contents {
			switch c.ContentCategory {
			case model.ContentCategoryAction:
				actions = appendLine(actions, c.ContentValue)
			case model.ContentCategoryExpectation:
				expectations = appendLine(expectations, c.ContentValue)
			}
		}

		// The title goes in the test-case column so a re-import of the
		// exported workbook keys on the same titles.
		values := []any{rowIdx + 1, string(tc.TestType), tc.Function, tc.Title, actions, expectations, string(tc.Target)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		for i, device := range devices {
			r, ok := results[tc.ID][device]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(len(labels)+1+i, row)
			if err := f.SetCellValue(sheet, cell, string(r.Status)); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	return s + "\n" + line
}

// sheetName trims a title to excelize's 31 character sheet name limit.
func sheetName(title string) string {
	runes := []rune(title)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
