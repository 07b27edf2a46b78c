package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testhub/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestTask(t *testing.T, s *Store) *model.Task {
	t.Helper()
	project := &model.Project{Name: "demo"}
	require.NoError(t, s.CreateProject(project))
	task := &model.Task{ProjectID: project.ID, Title: "Sprint 12 regression"}
	require.NoError(t, s.CreateTask(task))
	return task
}

func TestProjectRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := &model.Project{Name: "demo", RedmineProjectID: "demo-rm", DailyImportEnabled: true}
	require.NoError(t, s.CreateProject(p))
	require.NotZero(t, p.ID)

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, "demo-rm", got.RedmineProjectID)
	assert.True(t, got.DailyImportEnabled)

	byName, err := s.GetProjectByName("demo")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, p.ID, byName.ID)

	missing, err := s.GetProjectByName("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	daily, err := s.ListDailyImportProjects()
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, p.ID, daily[0].ID)
}

func TestTaskRoundTrip(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	got, err := s.GetTaskByTitle(task.ProjectID, "Sprint 12 regression")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.ID, got.ID)
	assert.False(t, got.Subtask())

	sub := &model.Task{ProjectID: task.ProjectID, ParentID: &task.ID, Title: "Login flow"}
	require.NoError(t, s.CreateTask(sub))

	subs, err := s.ListSubtasks(task.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Login flow", subs[0].Title)
	assert.True(t, subs[0].Subtask())

	top, err := s.ListTasks(task.ProjectID)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, task.ID, top[0].ID)

	got.Status = "in progress"
	got.RedmineID = "1234"
	require.NoError(t, s.UpdateTask(got))

	byRedmine, err := s.GetTaskByRedmineID(task.ProjectID, "1234")
	require.NoError(t, err)
	require.NotNil(t, byRedmine)
	assert.Equal(t, "in progress", byRedmine.Status)
}

func TestTestCaseUpsertCycle(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	tc := &model.TestCase{
		TaskID:   task.ID,
		Title:    "TC01 - Login",
		TestType: model.TestTypeFeature,
		Target:   model.TargetPC,
	}
	require.NoError(t, s.CreateTestCase(tc))

	got, err := s.GetTestCaseByTitle(task.ID, "TC01 - Login")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.TargetPC, got.Target)

	got.Target = model.TargetPCSP
	require.NoError(t, s.UpdateTestCase(got))

	again, err := s.GetTestCaseByTitle(task.ID, "TC01 - Login")
	require.NoError(t, err)
	assert.Equal(t, model.TargetPCSP, again.Target)

	n, err := s.CountTestCases(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.UpdateTaskTestCaseCount(task.ID))
	reloaded, err := s.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.NumberOfTestCases)
}

func TestReplaceTestStep(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	tc := &model.TestCase{TaskID: task.ID, Title: "TC01"}
	require.NoError(t, s.CreateTestCase(tc))

	require.NoError(t, s.ReplaceTestStep(tc.ID, []string{"open page", "click login"}, []string{"dashboard shown"}))

	contents, err := s.ListStepContents(tc.ID)
	require.NoError(t, err)
	require.Len(t, contents, 3)
	assert.Equal(t, model.ContentCategoryAction, contents[0].ContentCategory)
	assert.Equal(t, "open page", contents[0].ContentValue)
	assert.Equal(t, "click login", contents[1].ContentValue)
	assert.Equal(t, model.ContentCategoryExpectation, contents[2].ContentCategory)
	assert.Equal(t, "dashboard shown", contents[2].ContentValue)

	// A second replace must not accumulate rows.
	require.NoError(t, s.ReplaceTestStep(tc.ID, []string{"open page"}, nil))
	contents, err = s.ListStepContents(tc.ID)
	require.NoError(t, err)
	require.Len(t, contents, 1)
}

func TestReplaceDeviceResult(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	tc := &model.TestCase{TaskID: task.ID, Title: "TC01"}
	require.NoError(t, s.CreateTestCase(tc))

	require.NoError(t, s.ReplaceDeviceResult(tc.ID, "Chrome", model.StatusFail, "NG"))
	require.NoError(t, s.ReplaceDeviceResult(tc.ID, "Safari", model.StatusPass, "Pass"))
	require.NoError(t, s.ReplaceDeviceResult(tc.ID, "Chrome", model.StatusPass, "Pass"))

	results, err := s.ListTestResults(tc.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Chrome", results[0].Device)
	assert.Equal(t, model.StatusPass, results[0].Status)
	assert.Equal(t, "Safari", results[1].Device)
}

func TestDeleteTestCasesByTask(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	tc := &model.TestCase{TaskID: task.ID, Title: "TC01"}
	require.NoError(t, s.CreateTestCase(tc))
	require.NoError(t, s.ReplaceTestStep(tc.ID, []string{"a"}, []string{"b"}))
	require.NoError(t, s.ReplaceDeviceResult(tc.ID, "Chrome", model.StatusPass, "Pass"))

	require.NoError(t, s.DeleteTestCasesByTask(task.ID))

	n, err := s.CountTestCases(task.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	results, err := s.ListTestResults(tc.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBugRoundTrip(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	b := &model.Bug{
		TaskID:      task.ID,
		Title:       "Button misaligned",
		Application: model.BugApplicationSP,
		Category:    model.BugCategoryStgVN,
		Priority:    model.BugPriorityHigh,
		Status:      model.BugStatusNew,
		BugType:     model.BugTypeNew,
	}
	require.NoError(t, s.CreateBug(b))

	got, err := s.GetBugByTitle(task.ID, "Button misaligned")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BugPriorityHigh, got.Priority)

	got.Status = model.BugStatusFixing
	require.NoError(t, s.UpdateBug(got))

	bugs, err := s.ListBugs(task.ID)
	require.NoError(t, err)
	require.Len(t, bugs, 1)
	assert.Equal(t, model.BugStatusFixing, bugs[0].Status)

	counts, err := s.CountBugsByCategory(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.BugCategoryStgVN])

	require.NoError(t, s.DeleteBugsByTask(task.ID))
	bugs, err = s.ListBugs(task.ID)
	require.NoError(t, err)
	assert.Empty(t, bugs)
}

func TestImportRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	task := createTestTask(t, s)

	run := &model.ImportRun{
		ID:        "run-1",
		ProjectID: task.ProjectID,
		Kind:      "test_case",
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateImportRun(run))

	run.Status = model.RunStatusSuccess
	run.ImportedCount = 3
	run.UpdatedCount = 1
	require.NoError(t, s.FinishImportRun(run))

	runs, err := s.ListImportRuns(task.ProjectID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)
	assert.Equal(t, 3, runs[0].ImportedCount)
	require.NotNil(t, runs[0].FinishedAt)
}
