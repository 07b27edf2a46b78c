package jobs

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testhub/internal/model"
	"testhub/internal/redmine"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

type fakeIssues struct {
	issues []redmine.Issue
}

func (f *fakeIssues) GetIssue(ctx context.Context, id int) (*redmine.Issue, error) {
	for i := range f.issues {
		if f.issues[i].ID == id {
			return &f.issues[i], nil
		}
	}
	return nil, context.Canceled
}

func (f *fakeIssues) ListIssues(ctx context.Context, projectID string, offset, limit int, query url.Values) ([]redmine.Issue, int, error) {
	if offset >= len(f.issues) {
		return nil, len(f.issues), nil
	}
	return f.issues[offset:], len(f.issues), nil
}

type fakeSheets struct{}

func (fakeSheets) ListSheets(ctx context.Context, spreadsheetID string) ([]sheets.SheetInfo, error) {
	return []sheets.SheetInfo{{Title: "Sheet1", SheetID: 0}}, nil
}

func (fakeSheets) GetRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	return [][]string{
		{"banner"},
		{""},
		{""},
		{"No", "Funtion", "操作", "期待 結果", "対象", "Chrome"},
		{"TC01", "Login", "open", "shown", "PC", "Pass"},
	}, nil
}

func TestNextFire(t *testing.T) {
	s := NewScheduler(nil, nil, 6, nil)

	morning := time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), s.nextFire(morning))

	evening := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), s.nextFire(evening))

	exactly := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), s.nextFire(exactly))
}

func TestRunOnce(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	enabled := &model.Project{Name: "enabled", RedmineProjectID: "rm", DailyImportEnabled: true}
	require.NoError(t, s.CreateProject(enabled))
	disabled := &model.Project{Name: "disabled", RedmineProjectID: "rm2"}
	require.NoError(t, s.CreateProject(disabled))

	issues := &fakeIssues{issues: []redmine.Issue{
		{
			ID:      1,
			Subject: "4. Testing - #1 login",
			CustomFields: []redmine.CustomField{
				{Name: redmine.FieldTestcaseLink, Value: "https://docs.google.com/spreadsheets/d/book1/edit"},
			},
		},
	}}
	imp := redmine.NewImporter(s, issues, fakeSheets{}, nil)
	sched := NewScheduler(s, imp, 6, nil)

	require.NoError(t, sched.RunOnce(context.Background()))

	runs, err := s.ListImportRuns(enabled.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)
	assert.Equal(t, "daily", runs[0].Kind)
	assert.Equal(t, 1, runs[0].ImportedCount)
	require.NotNil(t, runs[0].FinishedAt)

	tasks, err := s.ListTasks(enabled.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	none, err := s.ListImportRuns(disabled.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
