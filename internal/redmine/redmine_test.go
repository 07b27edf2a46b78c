package redmine

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testhub/internal/model"
	"testhub/internal/sheets"
	"testhub/internal/store"
)

type fakeIssues struct {
	issues map[int]*Issue
}

func (f *fakeIssues) GetIssue(ctx context.Context, id int) (*Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, errIssueNotFound
	}
	return issue, nil
}

func (f *fakeIssues) ListIssues(ctx context.Context, projectID string, offset, limit int, query url.Values) ([]Issue, int, error) {
	all := make([]Issue, 0, len(f.issues))
	for _, issue := range f.issues {
		all = append(all, *issue)
	}
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

var errIssueNotFound = errors.New("issue not found")

type fakeSheets struct {
	tabs []sheets.SheetInfo
	rows map[string][][]string
}

func (f *fakeSheets) ListSheets(ctx context.Context, spreadsheetID string) ([]sheets.SheetInfo, error) {
	return f.tabs, nil
}

func (f *fakeSheets) GetRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	return f.rows[sheetName], nil
}

func testCaseSheet() [][]string {
	return [][]string{
		{"banner"},
		{""},
		{""},
		{"No", "Funtion", "操作", "期待 結果", "対象", "Chrome"},
		{"TC01", "Login", "open", "shown", "PC", "Pass"},
	}
}

func testingIssue(id int, subject string) *Issue {
	return &Issue{
		ID:      id,
		Subject: subject,
		Status:  Named{ID: 1, Name: "In Progress"},
		Author:  Named{ID: 9, Name: "tester"},
		CustomFields: []CustomField{
			{Name: FieldTestcaseLink, Value: "https://docs.google.com/spreadsheets/d/book1/edit"},
			{Name: FieldStgBugsVN, Value: "2"},
		},
	}
}

func newRedmineFixture(t *testing.T, issues *fakeIssues, sc sheets.Client) (*Importer, *store.Store, *model.Project) {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	project := &model.Project{Name: "demo", RedmineProjectID: "demo-rm"}
	require.NoError(t, s.CreateProject(project))

	return NewImporter(s, issues, sc, nil), s, project
}

func TestImportIssue(t *testing.T) {
	issues := &fakeIssues{issues: map[int]*Issue{
		1234: testingIssue(1234, "4. Testing - #1234 login rework"),
	}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{{Title: "Sheet1", SheetID: 0}},
		rows: map[string][][]string{"Sheet1": testCaseSheet()},
	}
	imp, s, project := newRedmineFixture(t, issues, sc)

	res, err := imp.ImportIssue(context.Background(), project, 1234)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedCount)

	task, err := s.GetTaskByRedmineID(project.ID, "1234")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "4. Testing - #1234 login rework", task.Title)
	assert.Equal(t, "In Progress", task.Status)
	assert.Equal(t, "tester", task.CreatedByName)
	assert.Equal(t, "2", task.StgBugsVN)
	assert.Contains(t, task.TestcaseLink, "book1")

	cases, err := s.ListTestCases(task.ID)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestImportIssueIdempotent(t *testing.T) {
	issues := &fakeIssues{issues: map[int]*Issue{
		1234: testingIssue(1234, "4. Testing - #1234 login rework"),
	}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{{Title: "Sheet1", SheetID: 0}},
		rows: map[string][][]string{"Sheet1": testCaseSheet()},
	}
	imp, s, project := newRedmineFixture(t, issues, sc)

	_, err := imp.ImportIssue(context.Background(), project, 1234)
	require.NoError(t, err)

	issues.issues[1234].Status = Named{ID: 2, Name: "Resolved"}
	res, err := imp.ImportIssue(context.Background(), project, 1234)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)

	tasks, err := s.ListTasks(project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Resolved", tasks[0].Status)
}

func TestImportIssueParentResolution(t *testing.T) {
	parent := testingIssue(1000, "4. Testing - #1000 epic")
	child := testingIssue(1001, "4. Testing - #1001 part")
	child.Parent = &struct {
		ID int `json:"id"`
	}{ID: 1000}

	issues := &fakeIssues{issues: map[int]*Issue{1000: parent, 1001: child}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{{Title: "Sheet1", SheetID: 0}},
		rows: map[string][][]string{"Sheet1": testCaseSheet()},
	}
	imp, s, project := newRedmineFixture(t, issues, sc)

	_, err := imp.ImportIssue(context.Background(), project, 1000)
	require.NoError(t, err)
	_, err = imp.ImportIssue(context.Background(), project, 1001)
	require.NoError(t, err)

	parentTask, err := s.GetTaskByRedmineID(project.ID, "1000")
	require.NoError(t, err)
	childTask, err := s.GetTaskByRedmineID(project.ID, "1001")
	require.NoError(t, err)
	require.NotNil(t, childTask.ParentID)
	assert.Equal(t, parentTask.ID, *childTask.ParentID)
}

func TestResolveSourceSharedWorkbook(t *testing.T) {
	issue := testingIssue(1234, "4. Testing - #1234 login")
	issues := &fakeIssues{issues: map[int]*Issue{1234: issue}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{
			{Title: "#1233 checkout", SheetID: 0},
			{Title: "#1234 login", SheetID: 1},
		},
		rows: map[string][][]string{"#1234 login": testCaseSheet()},
	}
	imp, s, project := newRedmineFixture(t, issues, sc)

	res, err := imp.ImportIssue(context.Background(), project, 1234)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedCount)

	task, err := s.GetTaskByRedmineID(project.ID, "1234")
	require.NoError(t, err)

	// The shared workbook must not spawn subtasks from foreign tabs.
	subs, err := s.ListSubtasks(task.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestResolveSourceCreatesSubtasks(t *testing.T) {
	issue := testingIssue(1234, "4. Testing - #1234 release")
	issues := &fakeIssues{issues: map[int]*Issue{1234: issue}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{
			{Title: "Login", SheetID: 0},
			{Title: "Checkout", SheetID: 1},
			{Title: "Template", SheetID: 2},
		},
		rows: map[string][][]string{
			"Login":    testCaseSheet(),
			"Checkout": testCaseSheet(),
		},
	}
	imp, s, project := newRedmineFixture(t, issues, sc)

	res, err := imp.ImportIssue(context.Background(), project, 1234)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ImportedCount)

	task, err := s.GetTaskByRedmineID(project.ID, "1234")
	require.NoError(t, err)

	subs, err := s.ListSubtasks(task.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Login", subs[0].Title)
	assert.Equal(t, "Checkout", subs[1].Title)
}

func TestTestingSubjectPattern(t *testing.T) {
	assert.True(t, TestingSubjectPattern.MatchString("4. Testing - #1234 login"))
	assert.True(t, TestingSubjectPattern.MatchString("4.Testing-#99"))
	assert.True(t, TestingSubjectPattern.MatchString("4. TESTING - #7 x"))
	assert.False(t, TestingSubjectPattern.MatchString("3. Development - #1234"))
	assert.False(t, TestingSubjectPattern.MatchString("Testing - #1234"))
}

func TestListCandidates(t *testing.T) {
	child := testingIssue(4, "4. Testing - #4 d")
	child.Parent = &struct {
		ID int `json:"id"`
	}{ID: 1}
	issues := &fakeIssues{issues: map[int]*Issue{
		1: testingIssue(1, "4. Testing - #1 a"),
		2: testingIssue(2, "4. Testing - #2 b"),
		3: testingIssue(3, "3. Development - #3 c"),
		4: child,
	}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{{Title: "Sheet1", SheetID: 0}},
		rows: map[string][][]string{"Sheet1": testCaseSheet()},
	}
	imp, _, project := newRedmineFixture(t, issues, sc)

	_, err := imp.ImportIssue(context.Background(), project, 1)
	require.NoError(t, err)

	candidates, err := imp.ListCandidates(context.Background(), project)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	byID := map[int]bool{}
	for _, c := range candidates {
		byID[c.Issue.ID] = c.AlreadyImported
	}
	assert.True(t, byID[1])
	assert.False(t, byID[2])
	_, listed := byID[4]
	assert.False(t, listed, "children of testing issues ride along with their parent")
}

func TestImportAll(t *testing.T) {
	issues := &fakeIssues{issues: map[int]*Issue{
		1: testingIssue(1, "4. Testing - #1 a"),
		2: testingIssue(2, "4. Testing - #2 b"),
	}}
	sc := &fakeSheets{
		tabs: []sheets.SheetInfo{{Title: "Sheet1", SheetID: 0}},
		rows: map[string][][]string{"Sheet1": testCaseSheet()},
	}
	imp, s, project := newRedmineFixture(t, issues, sc)

	res, err := imp.ImportAll(context.Background(), project, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ImportedCount)

	tasks, err := s.ListTasks(project.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
