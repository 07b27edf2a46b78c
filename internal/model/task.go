package model

import "time"

// Project groups tasks and owns the Redmine linkage for bulk imports.
type Project struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	RedmineProjectID   string    `json:"redmineProjectId"`
	DailyImportEnabled bool      `json:"dailyImportEnabled"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Task is the destination aggregate imported test cases and bugs attach to.
// A task with a ParentID is a subtask; multi-sheet workbooks route rows to
// subtasks by sheet name.
type Task struct {
	ID                int64    `json:"id"`
	ProjectID         int64    `json:"projectId"`
	ParentID          *int64   `json:"parentId,omitempty"`
	RedmineID         string   `json:"redmineId,omitempty"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Status            string   `json:"status,omitempty"`
	EstimatedTime     *float64 `json:"estimatedTime,omitempty"`
	SpentTime         *float64 `json:"spentTime,omitempty"`
	PercentDone       int      `json:"percentDone"`
	StartDate         string   `json:"startDate,omitempty"`
	DueDate           string   `json:"dueDate,omitempty"`
	TestcaseLink      string   `json:"testcaseLink,omitempty"`
	BugLink           string   `json:"bugLink,omitempty"`
	NumberOfTestCases int      `json:"numberOfTestCases"`
	StgBugsVN         string   `json:"stgBugsVn,omitempty"`
	StgBugsJP         string   `json:"stgBugsJp,omitempty"`
	ProdBugs          string   `json:"prodBugs,omitempty"`
	CreatedByName     string   `json:"createdByName,omitempty"`
}

// Subtask reports whether the task belongs to a parent task.
func (t *Task) Subtask() bool {
	return t.ParentID != nil
}
