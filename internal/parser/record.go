package parser

import (
	"errors"

	"testhub/internal/model"
)

// ErrNoTitle marks a data row with neither id nor function content. The
// row cannot form a natural key and must be skipped.
var ErrNoTitle = errors.New("row has no id or function value")

// ErrNoContent marks a bug row with an empty content cell.
var ErrNoContent = errors.New("bug row has no content")

// DeviceResultDraft is one device lane result extracted from a row.
type DeviceResultDraft struct {
	Device   string
	Status   model.TestStatus
	RawValue string
}

// TestCaseDraft is the normalized form of one test-case data row, ready
// for reconciliation against the store.
type TestCaseDraft struct {
	Title                 string
	TestType              model.TestType
	Function              string
	Target                model.Target
	Description           string
	AcceptanceCriteriaURL string
	UserStoryURL          string
	Actions               []string
	Expectations          []string
	DeviceResults         []DeviceResultDraft
}

// ExtractTestCase normalizes one data row into a draft using the sheet's
// column mapping. The test-case column, when filled, is the title and
// the natural key; otherwise one is synthesized from id and function.
// Every classifier is total, so the only failure mode is a row that
// cannot produce a title either way.
func ExtractTestCase(row []string, mapping ColumnMapping) (*TestCaseDraft, error) {
	id := CellValue(row, mapping.ID)
	function := CellValue(row, mapping.Function)
	title := CellValue(row, mapping.TestCase)
	if title == "" {
		title = BuildTestCaseTitle(id, function)
	}
	if title == "" {
		return nil, ErrNoTitle
	}

	draft := &TestCaseDraft{
		Title:                 title,
		TestType:              NormalizeTestType(CellValue(row, mapping.TestType)),
		Function:              function,
		Target:                NormalizeTarget(CellValue(row, mapping.Target)),
		Description:           CellValue(row, mapping.TestCase),
		AcceptanceCriteriaURL: CellValue(row, mapping.AcceptanceCriteria),
		UserStoryURL:          CellValue(row, mapping.UserStory),
		Actions:               SplitLines(CellValue(row, mapping.Action)),
		Expectations:          SplitLines(CellValue(row, mapping.ExpectedResult)),
	}

	// A blank lane cell means the lane was not touched this round;
	// whatever result is already recorded for it stays.
	for _, dev := range mapping.DeviceColumns {
		raw := CellValue(row, dev.Index)
		if raw == "" {
			continue
		}
		draft.DeviceResults = append(draft.DeviceResults, DeviceResultDraft{
			Device:   dev.Name,
			Status:   NormalizeTestStatus(raw),
			RawValue: raw,
		})
	}
	return draft, nil
}

// BugDraft is the normalized form of one bug row.
type BugDraft struct {
	Title         string
	Content       string
	Application   model.BugApplication
	Category      model.BugCategory
	Priority      model.BugPriority
	Status        model.BugStatus
	BugType       model.BugType
	ImageVideoURL string
	DevName       string
	TesterName    string
}

const maxBugTitleRunes = 200

// ExtractBug normalizes one bug row into a draft. The title is derived
// from the first content line since bug sheets have no id column worth
// trusting.
func ExtractBug(row []string, mapping BugColumnMapping) (*BugDraft, error) {
	content := CellValue(row, mapping.Content)
	lines := SplitLines(content)
	if len(lines) == 0 {
		return nil, ErrNoContent
	}

	return &BugDraft{
		Title:         TruncateRunes(lines[0], maxBugTitleRunes),
		Content:       content,
		Application:   NormalizeApplication(CellValue(row, mapping.Application)),
		Category:      NormalizeBugCategory(CellValue(row, mapping.Category)),
		Priority:      NormalizeBugPriority(CellValue(row, mapping.Priority)),
		Status:        NormalizeBugStatus(CellValue(row, mapping.Status)),
		BugType:       NormalizeBugType(CellValue(row, mapping.BugType)),
		ImageVideoURL: CellValue(row, mapping.Media),
		DevName:       CellValue(row, mapping.Dev),
		TesterName:    CellValue(row, mapping.Tester),
	}, nil
}
