package redmine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"testhub/internal/importer"
	"testhub/internal/model"
	"testhub/internal/parser"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

// IssueClient is the Redmine API surface the importer needs.
type IssueClient interface {
	GetIssue(ctx context.Context, id int) (*Issue, error)
	ListIssues(ctx context.Context, projectID string, offset, limit int, query url.Values) ([]Issue, int, error)
}

// skipSheetPattern matches tab names that never become subtasks.
var skipSheetPattern = regexp.MustCompile(`(?i)summary|template|settings|master`)

// Importer pulls testing issues from Redmine into tasks and chains into
// the spreadsheet importers through the links on each issue.
type Importer struct {
	store        *store.Store
	issues       IssueClient
	sheetsClient sheets.Client
	testCases    *importer.TestCaseImporter
	bugs         *importer.BugImporter
	logger       *slog.Logger
}

// NewImporter wires a Redmine importer.
func NewImporter(st *store.Store, issues IssueClient, sheetsClient sheets.Client, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:        st,
		issues:       issues,
		sheetsClient: sheetsClient,
		testCases:    importer.NewTestCaseImporter(st, sheetsClient, logger),
		bugs:         importer.NewBugImporter(st, sheetsClient, logger),
		logger:       logger,
	}
}

// ImportIssue imports one Redmine issue into project: the issue becomes
// (or refreshes) a task, then its testcase and bug links are imported.
func (imp *Importer) ImportIssue(ctx context.Context, project *model.Project, issueID int) (*model.ImportResult, error) {
	res := model.NewImportResult()

	issue, err := imp.issues.GetIssue(ctx, issueID)
	if err != nil {
		return res, fmt.Errorf("fetch issue %d: %w", issueID, err)
	}

	task, err := imp.upsertTask(project, issue)
	if err != nil {
		return res, err
	}

	if link := task.TestcaseLink; link != "" {
		src, err := imp.resolveSource(ctx, task, link)
		if err != nil {
			res.AddError(fmt.Sprintf("testcase link of issue %d: %s", issueID, err))
		} else {
			sub, err := imp.testCases.Import(ctx, task, src)
			res.Merge(sub)
			if err != nil {
				return res, fmt.Errorf("test case import for issue %d: %w", issueID, err)
			}
		}
	}

	if link := task.BugLink; link != "" {
		src, err := imp.resolveSource(ctx, task, link)
		if err != nil {
			res.AddError(fmt.Sprintf("bug link of issue %d: %s", issueID, err))
		} else {
			sub, err := imp.bugs.Import(ctx, task, src)
			res.Merge(sub)
			if err != nil {
				return res, fmt.Errorf("bug import for issue %d: %w", issueID, err)
			}
		}
	}

	imp.logger.Info("redmine issue imported",
		"issueId", issueID,
		"taskId", task.ID,
		"imported", res.ImportedCount,
		"updated", res.UpdatedCount)
	return res, nil
}

// upsertTask creates or refreshes the task backing a Redmine issue. The
// Redmine issue id is the preferred key; the subject is the fallback so
// issues imported before they were linked keep their history.
func (imp *Importer) upsertTask(project *model.Project, issue *Issue) (*model.Task, error) {
	redmineID := fmt.Sprint(issue.ID)

	task, err := imp.store.GetTaskByRedmineID(project.ID, redmineID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		task, err = imp.store.GetTaskByTitle(project.ID, issue.Subject)
		if err != nil {
			return nil, err
		}
	}

	var parentID *int64
	if issue.Parent != nil {
		parent, err := imp.store.GetTaskByRedmineID(project.ID, fmt.Sprint(issue.Parent.ID))
		if err != nil {
			return nil, err
		}
		if parent != nil {
			parentID = &parent.ID
		}
	}

	fill := func(t *model.Task) {
		t.RedmineID = redmineID
		t.ParentID = parentID
		t.Title = issue.Subject
		t.Description = issue.Description
		t.Status = issue.Status.Name
		t.EstimatedTime = issue.EstimatedHours
		t.SpentTime = issue.SpentHours
		t.PercentDone = issue.DoneRatio
		t.StartDate = issue.StartDate
		t.DueDate = issue.DueDate
		t.TestcaseLink = issue.CustomFieldValue(FieldTestcaseLink)
		t.BugLink = issue.CustomFieldValue(FieldBugLink)
		t.StgBugsVN = issue.CustomFieldValue(FieldStgBugsVN)
		t.StgBugsJP = issue.CustomFieldValue(FieldStgBugsJP)
		t.ProdBugs = issue.CustomFieldValue(FieldProdBugs)
		t.CreatedByName = issue.Author.Name
	}

	if task == nil {
		task = &model.Task{ProjectID: project.ID}
		fill(task)
		if err := imp.store.CreateTask(task); err != nil {
			return nil, err
		}
		return task, nil
	}

	fill(task)
	if err := imp.store.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// resolveSource turns a spreadsheet link into an import source for the
// task. A gid in the link pins one tab. In shared workbooks a tab named
// after the issue ("#1234") scopes the run to that tab. Otherwise the
// whole workbook is imported and missing subtasks are created from its
// tab names.
func (imp *Importer) resolveSource(ctx context.Context, task *model.Task, link string) (model.ImportSource, error) {
	id := sheets.ExtractSpreadsheetID(link)
	if id == "" {
		return model.ImportSource{}, fmt.Errorf("no spreadsheet id in %q", link)
	}

	src := model.ImportSource{SpreadsheetID: id}
	if gid := sheets.ExtractGID(link); gid != "" {
		src.GID = gid
		return src, nil
	}

	infos, err := imp.sheetsClient.ListSheets(ctx, id)
	if err != nil {
		return model.ImportSource{}, err
	}

	if task.RedmineID != "" {
		marker := "#" + task.RedmineID
		for _, info := range infos {
			if strings.Contains(info.Title, marker) {
				src.SheetFilter = marker
				return src, nil
			}
		}
	}

	src.AllSheets = true
	if err := imp.ensureSubtasks(task, infos); err != nil {
		return model.ImportSource{}, err
	}
	return src, nil
}

// ensureSubtasks creates a subtask per usable workbook tab when the
// workbook has more than one, so that multi-sheet imports have routes to
// land on.
func (imp *Importer) ensureSubtasks(task *model.Task, infos []sheets.SheetInfo) error {
	var usable []sheets.SheetInfo
	for _, info := range infos {
		if skipSheetPattern.MatchString(info.Title) {
			continue
		}
		usable = append(usable, info)
	}
	if len(usable) < 2 {
		return nil
	}

	existing, err := imp.store.ListSubtasks(task.ID)
	if err != nil {
		return err
	}

	for _, info := range usable {
		matched := false
		for _, sub := range existing {
			if parser.NameMatch(sub.Title, info.Title) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		sub := &model.Task{
			ProjectID: task.ProjectID,
			ParentID:  &task.ID,
			Title:     info.Title,
		}
		if err := imp.store.CreateTask(sub); err != nil {
			return err
		}
		existing = append(existing, sub)
		imp.logger.Debug("created subtask from sheet", "taskId", task.ID, "sheet", info.Title)
	}
	return nil
}
