package importer

import (
	"context"
	"fmt"
	"log/slog"

	"testhub/internal/model"
	"testhub/internal/parser"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

// Bug sheets carry a single label row; data starts on row two.
const bugFirstDataRow = 2

// BugImporter imports bug sheets into tasks.
type BugImporter struct {
	store  *store.Store
	client sheets.Client
	logger *slog.Logger
}

// NewBugImporter creates an importer reading through client.
func NewBugImporter(st *store.Store, client sheets.Client, logger *slog.Logger) *BugImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BugImporter{store: st, client: client, logger: logger}
}

// Import runs one bug import of src into task. Same error contract as
// the test-case importer: only run-fatal failures surface as errors.
func (imp *BugImporter) Import(ctx context.Context, task *model.Task, src model.ImportSource) (*model.ImportResult, error) {
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
		if err := imp.store.DeleteBugsByTask(task.ID); err != nil {
			return res, err
		}
	}

	for _, info := range targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := imp.importSheet(ctx, task, src.SpreadsheetID, info.Title, res); err != nil {
			return res, fmt.Errorf("sheet %q: %w", info.Title, err)
		}
	}

	imp.logger.Info("bug import finished",
		"taskId", task.ID,
		"imported", res.ImportedCount,
		"updated", res.UpdatedCount,
		"skipped", res.SkippedCount)
	return res, nil
}

func (imp *BugImporter) importSheet(ctx context.Context, task *model.Task, spreadsheetID, sheetName string, res *model.ImportResult) error {
	rows, err := imp.client.GetRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if len(rows) < bugFirstDataRow {
		imp.logger.Debug("bug sheet has no data rows", "sheet", sheetName)
		return nil
	}

	mapping := parser.ParseBugHeader(rows[0])

	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		rowNumber := bugFirstDataRow + i
		if parser.RowEmpty(row) {
			continue
		}

		draft, err := parser.ExtractBug(row, mapping)
		if err != nil {
			// Rows without content are decorative; skip them quietly.
			continue
		}
		if err := imp.reconcile(task, draft, res); err != nil {
			res.AddRowError(sheetName, rowNumber, err.Error())
		}
	}
	return nil
}

func (imp *BugImporter) reconcile(task *model.Task, draft *parser.BugDraft, res *model.ImportResult) error {
	existing, err := imp.store.GetBugByTitle(task.ID, draft.Title)
	if err != nil {
		return err
	}

	if existing == nil {
		bug := &model.Bug{
			TaskID:        task.ID,
			Title:         draft.Title,
			Content:       draft.Content,
			Application:   draft.Application,
			Category:      draft.Category,
			Priority:      draft.Priority,
			Status:        draft.Status,
			BugType:       draft.BugType,
			ImageVideoURL: draft.ImageVideoURL,
			DevName:       draft.DevName,
			TesterName:    draft.TesterName,
		}
		if err := imp.store.CreateBug(bug); err != nil {
			return err
		}
		res.ImportedCount++
		return nil
	}

	existing.Content = draft.Content
	existing.Application = draft.Application
	existing.Category = draft.Category
	existing.Priority = draft.Priority
	existing.Status = draft.Status
	existing.BugType = draft.BugType
	existing.ImageVideoURL = draft.ImageVideoURL
	existing.DevName = draft.DevName
	existing.TesterName = draft.TesterName
	if err := imp.store.UpdateBug(existing); err != nil {
		return err
	}
	res.UpdatedCount++
	return nil
}
