package model

import "time"

// TestType classifies a test case.
type TestType string

const (
	TestTypeFeature TestType = "feature"
	TestTypeUI      TestType = "ui"
)

// Target is the platform a test case applies to.
type Target string

const (
	TargetPC      Target = "pc"
	TargetSP      Target = "sp"
	TargetApp     Target = "app"
	TargetPCSP    Target = "pc_sp"
	TargetPCSPApp Target = "pc_sp_app"
)

// TestStatus is the outcome recorded for a device result.
type TestStatus string

const (
	StatusPass    TestStatus = "pass"
	StatusFail    TestStatus = "fail"
	StatusNotRun  TestStatus = "not_run"
	StatusBlocked TestStatus = "blocked"
	StatusUnknown TestStatus = "unknown"
)

// TestCase is one test case under a task. Title is the natural key within
// the owning task.
type TestCase struct {
	ID                    int64    `json:"id"`
	TaskID                int64    `json:"taskId"`
	Title                 string   `json:"title"`
	TestType              TestType `json:"testType"`
	Function              string   `json:"function,omitempty"`
	Target                Target   `json:"target"`
	Description           string   `json:"description,omitempty"`
	AcceptanceCriteriaURL string   `json:"acceptanceCriteriaUrl,omitempty"`
	UserStoryURL          string   `json:"userStoryUrl,omitempty"`
}

// TestStep is the step container of a test case. One imported row yields
// exactly one step holding its action and expectation lines.
type TestStep struct {
	ID          int64  `json:"id"`
	CaseID      int64  `json:"caseId"`
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
}

// Content categories for TestStepContent.
const (
	ContentCategoryAction      = "action"
	ContentCategoryExpectation = "expectation"
)

// TestStepContent is one ordered line of a step, either an action or an
// expected result.
type TestStepContent struct {
	ID              int64  `json:"id"`
	StepID          int64  `json:"stepId"`
	ContentType     string `json:"contentType"`
	ContentValue    string `json:"contentValue"`
	ContentCategory string `json:"contentCategory"`
	DisplayOrder    int    `json:"displayOrder"`
}

// TestResult is the latest recorded outcome for one device/environment
// lane of a test case. Device is the natural key within the case.
type TestResult struct {
	ID         int64      `json:"id"`
	CaseID     int64      `json:"caseId"`
	Device     string     `json:"device"`
	Status     TestStatus `json:"status"`
	RawValue   string     `json:"rawValue,omitempty"`
	ExecutedAt time.Time  `json:"executedAt"`
}
