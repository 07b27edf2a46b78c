package redmine

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"testhub/internal/model"
)

// TestingSubjectPattern matches the subjects of testing phase issues,
// e.g. "4. Testing - #1234 checkout rework".
var TestingSubjectPattern = regexp.MustCompile(`(?i)^4\.\s*Testing\s*-\s*#`)

const listPageSize = 100

// Candidate is one Redmine testing issue, annotated with whether it has
// already been imported as a task.
type Candidate struct {
	Issue           Issue `json:"issue"`
	AlreadyImported bool  `json:"alreadyImported"`
}

// ListCandidates returns every testing issue of the project's Redmine
// project, newest first, marking the ones that already exist as tasks.
// Children of another testing issue are left out; they come along as
// subtasks when their parent is imported.
func (imp *Importer) ListCandidates(ctx context.Context, project *model.Project) ([]Candidate, error) {
	issues, err := imp.fetchTestingIssues(ctx, project, nil)
	if err != nil {
		return nil, err
	}

	testingIDs := make(map[int]bool, len(issues))
	for _, issue := range issues {
		testingIDs[issue.ID] = true
	}

	candidates := make([]Candidate, 0, len(issues))
	for _, issue := range issues {
		if issue.Parent != nil && testingIDs[issue.Parent.ID] {
			continue
		}
		task, err := imp.store.GetTaskByRedmineID(project.ID, fmt.Sprint(issue.ID))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{Issue: issue, AlreadyImported: task != nil})
	}
	return candidates, nil
}

// ImportAll imports every testing issue of the project. query narrows
// the issue listing, e.g. an updated_on range for scheduled runs.
func (imp *Importer) ImportAll(ctx context.Context, project *model.Project, query url.Values) (*model.ImportResult, error) {
	res := model.NewImportResult()

	issues, err := imp.fetchTestingIssues(ctx, project, query)
	if err != nil {
		return res, err
	}

	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sub, err := imp.ImportIssue(ctx, project, issue.ID)
		res.Merge(sub)
		if err != nil {
			// One broken issue must not sink the batch.
			res.AddError(fmt.Sprintf("issue %d: %s", issue.ID, err))
		}
	}

	imp.logger.Info("bulk redmine import finished",
		"projectId", project.ID,
		"issues", len(issues),
		"imported", res.ImportedCount,
		"updated", res.UpdatedCount)
	return res, nil
}

// ImportByIDs imports the given issues in order.
func (imp *Importer) ImportByIDs(ctx context.Context, project *model.Project, ids []int) (*model.ImportResult, error) {
	res := model.NewImportResult()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sub, err := imp.ImportIssue(ctx, project, id)
		res.Merge(sub)
		if err != nil {
			res.AddError(fmt.Sprintf("issue %d: %s", id, err))
		}
	}
	return res, nil
}

// fetchTestingIssues pages through the project's issues and keeps the
// testing phase ones. Redmine cannot filter by subject pattern, so the
// filter runs client side.
func (imp *Importer) fetchTestingIssues(ctx context.Context, project *model.Project, query url.Values) ([]Issue, error) {
	if project.RedmineProjectID == "" {
		return nil, fmt.Errorf("project %q has no redmine project configured", project.Name)
	}

	var testing []Issue
	offset := 0
	for {
		page, total, err := imp.issues.ListIssues(ctx, project.RedmineProjectID, offset, listPageSize, query)
		if err != nil {
			return nil, fmt.Errorf("list issues for %s: %w", project.RedmineProjectID, err)
		}
		for _, issue := range page {
			if TestingSubjectPattern.MatchString(issue.Subject) {
				testing = append(testing, issue)
			}
		}
		offset += len(page)
		if offset >= total || len(page) == 0 {
			break
		}
	}
	return testing, nil
}
