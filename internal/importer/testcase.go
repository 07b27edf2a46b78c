// Package importer turns spreadsheet rows into persisted test cases and
// bugs. Imports are idempotent: rerunning the same source updates
// existing records by natural key instead of duplicating them.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"testhub/internal/model"
	"testhub/internal/parser"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

// Header geometry of test-case sheets. The first four rows are banner
// and label rows; row five is either a device-name row or already data.
const (
	headerRowCount   = 4
	firstDataRowWith = 6 // 1-based, when a device row is present
	firstDataRowNo   = 5 // 1-based, when row five is already data
)

// skipSheetPattern matches tab names that never hold test cases.
var skipSheetPattern = regexp.MustCompile(`(?i)summary|template|settings|master`)

// TestCaseImporter imports test-case sheets into tasks.
type TestCaseImporter struct {
	store  *store.Store
	client sheets.Client
	logger *slog.Logger
}

// NewTestCaseImporter creates an importer reading through client.
func NewTestCaseImporter(st *store.Store, client sheets.Client, logger *slog.Logger) *TestCaseImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TestCaseImporter{store: st, client: client, logger: logger}
}

// Import runs one import of src into task. Returns the accumulated
// counters; the error is non-nil only for run-fatal failures (source
// unreachable, storage gone, context cancelled). Row-level problems are
// absorbed into the result.
func (imp *TestCaseImporter) Import(ctx context.Context, task *model.Task, src model.ImportSource) (*model.ImportResult, error) {
	res := model.NewImportResult()

	infos, err := imp.client.ListSheets(ctx, src.SpreadsheetID)
	if err != nil {
		return res, fmt.Errorf("list sheets: %w", err)
	}

	targets, err := resolveSheets(infos, src)
	if err != nil {
		return res, err
	}

	if src.WipeExisting {
		if err := imp.wipe(task); err != nil {
			return res, err
		}
	}

	// Track which tasks need their cached counters refreshed.
	touched := map[int64]bool{}

	for _, info := range targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		dest, err := imp.resolveDestination(task, info.Title)
		if err != nil {
			return res, err
		}
		if err := imp.importSheet(ctx, dest, src.SpreadsheetID, info.Title, res); err != nil {
			return res, fmt.Errorf("sheet %q: %w", info.Title, err)
		}
		touched[dest.ID] = true
	}

	for taskID := range touched {
		if err := imp.store.UpdateTaskTestCaseCount(taskID); err != nil {
			return res, err
		}
	}

	imp.logger.Info("test case import finished",
		"taskId", task.ID,
		"imported", res.ImportedCount,
		"updated", res.UpdatedCount,
		"skipped", res.SkippedCount)
	return res, nil
}

// resolveSheets picks the tabs a source addresses. A GID that matches no
// tab is an error; otherwise the filter, the all-sheets flag or the
// first tab decides.
func resolveSheets(infos []sheets.SheetInfo, src model.ImportSource) ([]sheets.SheetInfo, error) {
	if len(infos) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", src.SpreadsheetID)
	}

	if src.GID != "" {
		for _, info := range infos {
			if fmt.Sprint(info.SheetID) == src.GID {
				return []sheets.SheetInfo{info}, nil
			}
		}
		return nil, fmt.Errorf("no sheet with gid %s in spreadsheet %s", src.GID, src.SpreadsheetID)
	}

	if src.SheetFilter != "" {
		var matched []sheets.SheetInfo
		for _, info := range infos {
			if parser.NameMatch(info.Title, src.SheetFilter) {
				matched = append(matched, info)
			}
		}
		if len(matched) == 0 {
			return nil, fmt.Errorf("no sheet matching %q in spreadsheet %s", src.SheetFilter, src.SpreadsheetID)
		}
		return matched, nil
	}

	if src.AllSheets {
		var usable []sheets.SheetInfo
		for _, info := range infos {
			if skipSheetPattern.MatchString(info.Title) {
				continue
			}
			usable = append(usable, info)
		}
		return usable, nil
	}

	return infos[:1], nil
}

// resolveDestination routes a sheet to the task its rows belong to. A
// parent task with subtasks routes by fuzzy sheet-name match; sheets
// matching no subtask land on the parent itself.
func (imp *TestCaseImporter) resolveDestination(task *model.Task, sheetName string) (*model.Task, error) {
	subtasks, err := imp.store.ListSubtasks(task.ID)
	if err != nil {
		return nil, err
	}
	for _, sub := range subtasks {
		if parser.NameMatch(sub.Title, sheetName) {
			return sub, nil
		}
	}
	return task, nil
}

// wipe removes the task's (and its subtasks') imported test cases before
// a clean re-import.
func (imp *TestCaseImporter) wipe(task *model.Task) error {
	if err := imp.store.DeleteTestCasesByTask(task.ID); err != nil {
		return err
	}
	subtasks, err := imp.store.ListSubtasks(task.ID)
	if err != nil {
		return err
	}
	for _, sub := range subtasks {
		if err := imp.store.DeleteTestCasesByTask(sub.ID); err != nil {
			return err
		}
	}
	return nil
}

// importSheet parses one tab and reconciles its rows into dest.
func (imp *TestCaseImporter) importSheet(ctx context.Context, dest *model.Task, spreadsheetID, sheetName string, res *model.ImportResult) error {
	rows, err := imp.client.GetRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if len(rows) <= headerRowCount {
		imp.logger.Debug("sheet has no data rows", "sheet", sheetName)
		return nil
	}

	headerRows := rows[:headerRowCount]
	targetCol := parser.FindTargetColumn(headerRows[headerRowCount-1])

	var (
		deviceRow []string
		dataRows  [][]string
		startRow  int // 1-based row number of the first data row
	)
	if parser.IsDataRow(rows[headerRowCount], targetCol) {
		dataRows = rows[headerRowCount:]
		startRow = firstDataRowNo
	} else {
		deviceRow = rows[headerRowCount]
		dataRows = rows[headerRowCount+1:]
		startRow = firstDataRowWith
	}

	mapping := parser.ParseHeader(headerRows, deviceRow)

	for i, row := range dataRows {
		if err := ctx.Err(); err != nil {
			return err
		}
		rowNumber := startRow + i
		if parser.RowEmpty(row) || parser.IsDecorativeRow(row, mapping) {
			continue
		}

		draft, err := parser.ExtractTestCase(row, mapping)
		if err != nil {
			res.AddRowError(sheetName, rowNumber, err.Error())
			continue
		}
		if err := imp.reconcile(dest, draft, res); err != nil {
			res.AddRowError(sheetName, rowNumber, err.Error())
		}
	}
	return nil
}

// reconcile upserts one draft by its natural key and replaces its step
// and device-result children.
func (imp *TestCaseImporter) reconcile(dest *model.Task, draft *parser.TestCaseDraft, res *model.ImportResult) error {
	existing, err := imp.store.GetTestCaseByTitle(dest.ID, draft.Title)
	if err != nil {
		return err
	}

	var tc *model.TestCase
	if existing == nil {
		tc = &model.TestCase{
			TaskID:                dest.ID,
			Title:                 draft.Title,
			TestType:              draft.TestType,
			Function:              draft.Function,
			Target:                draft.Target,
			Description:           draft.Description,
			AcceptanceCriteriaURL: draft.AcceptanceCriteriaURL,
			UserStoryURL:          draft.UserStoryURL,
		}
		if err := imp.store.CreateTestCase(tc); err != nil {
			return err
		}
	} else {
		tc = existing
		tc.TestType = draft.TestType
		tc.Function = draft.Function
		tc.Target = draft.Target
		tc.Description = draft.Description
		tc.AcceptanceCriteriaURL = draft.AcceptanceCriteriaURL
		tc.UserStoryURL = draft.UserStoryURL
		if err := imp.store.UpdateTestCase(tc); err != nil {
			return err
		}
	}

	if err := imp.store.ReplaceTestStep(tc.ID, draft.Actions, draft.Expectations); err != nil {
		return err
	}
	for _, dr := range draft.DeviceResults {
		if err := imp.store.ReplaceDeviceResult(tc.ID, dr.Device, dr.Status, dr.RawValue); err != nil {
			return err
		}
	}

	// Count only after the row's children are persisted; a row that
	// errors out here becomes a skipped row, not an imported one.
	if existing == nil {
		res.ImportedCount++
	} else {
		res.UpdatedCount++
	}
	return nil
}
