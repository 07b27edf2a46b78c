package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"testhub/internal/model"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Target
	}{
		{"PC", model.TargetPC},
		{"SP", model.TargetSP},
		{"APP", model.TargetApp},
		{"PC・SP", model.TargetPCSP},
		{"pc, sp", model.TargetPCSP},
		{"PC+SP", model.TargetPCSP},
		{"SP PC", model.TargetPCSP},
		{"PC・SP・APP", model.TargetPCSPApp},
		{"all", model.TargetPCSPApp},
		{"", model.TargetPCSPApp},
		{"何か変", model.TargetPCSPApp},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTarget(tt.raw))
		})
	}
}

func TestNormalizeTestStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.TestStatus
	}{
		{"Pass", model.StatusPass},
		{"OK", model.StatusPass},
		{"成功", model.StatusPass},
		{"Fail", model.StatusFail},
		{"Error", model.StatusFail},
		{"失敗", model.StatusFail},
		{"NG", model.StatusFail},
		{"Not Run", model.StatusNotRun},
		{"未実施", model.StatusNotRun},
		{"Skip", model.StatusNotRun},
		{"Pending", model.StatusNotRun},
		{"Blocked", model.StatusBlocked},
		{"ブロック", model.StatusBlocked},
		{"", model.StatusNotRun},
		{"???", model.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTestStatus(tt.raw))
		})
	}
}

// "pending" contains the letters "ng" but must never be read as a
// failure.
func TestNormalizeTestStatusPendingIsNotFail(t *testing.T) {
	assert.Equal(t, model.StatusNotRun, NormalizeTestStatus("pending"))
}

func TestNormalizeTestType(t *testing.T) {
	assert.Equal(t, model.TestTypeUI, NormalizeTestType("UI"))
	assert.Equal(t, model.TestTypeUI, NormalizeTestType("デザイン"))
	assert.Equal(t, model.TestTypeFeature, NormalizeTestType("feature"))
	assert.Equal(t, model.TestTypeFeature, NormalizeTestType(""))
}

func TestNormalizeApplication(t *testing.T) {
	tests := []struct {
		raw  string
		want model.BugApplication
	}{
		{"SP+PC", model.BugApplicationSPPC},
		{"PC・SP", model.BugApplicationSPPC},
		{"APP", model.BugApplicationApp},
		{"SP", model.BugApplicationSP},
		{"PC", model.BugApplicationPC},
		{"ALL", model.BugApplicationAll},
		{"", model.BugApplicationSPPC},
		{"unknown thing", model.BugApplicationSPPC},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeApplication(tt.raw))
		})
	}
}

func TestNormalizeBugCategory(t *testing.T) {
	assert.Equal(t, model.BugCategoryStgVN, NormalizeBugCategory("STG VN"))
	assert.Equal(t, model.BugCategoryStgJP, NormalizeBugCategory("STG JP"))
	assert.Equal(t, model.BugCategoryProd, NormalizeBugCategory("Production"))
	assert.Equal(t, model.BugCategoryNewRequirement, NormalizeBugCategory("New Requirement"))
	assert.Equal(t, model.BugCategoryStgVN, NormalizeBugCategory(""))
}

func TestNormalizeBugPriority(t *testing.T) {
	assert.Equal(t, model.BugPriorityHigh, NormalizeBugPriority("High"))
	assert.Equal(t, model.BugPriorityHigh, NormalizeBugPriority("Cao"))
	assert.Equal(t, model.BugPriorityLow, NormalizeBugPriority("Thấp"))
	assert.Equal(t, model.BugPriorityNormal, NormalizeBugPriority(""))
	assert.Equal(t, model.BugPriorityNormal, NormalizeBugPriority("medium"))
}

func TestNormalizeBugStatus(t *testing.T) {
	assert.Equal(t, model.BugStatusDone, NormalizeBugStatus("Done"))
	assert.Equal(t, model.BugStatusDone, NormalizeBugStatus("Đã xong"))
	assert.Equal(t, model.BugStatusFixing, NormalizeBugStatus("Đang sửa"))
	assert.Equal(t, model.BugStatusTesting, NormalizeBugStatus("Đang test"))
	assert.Equal(t, model.BugStatusPending, NormalizeBugStatus("Chờ"))
	assert.Equal(t, model.BugStatusNew, NormalizeBugStatus(""))
}

func TestNormalizeBugType(t *testing.T) {
	assert.Equal(t, model.BugTypeOld, NormalizeBugType("Old"))
	assert.Equal(t, model.BugTypeOld, NormalizeBugType("既存"))
	assert.Equal(t, model.BugTypeNew, NormalizeBugType(""))
	assert.Equal(t, model.BugTypeNew, NormalizeBugType("new bug"))
}

func TestBuildTestCaseTitle(t *testing.T) {
	assert.Equal(t, "TC01 - Login", BuildTestCaseTitle("TC01", "Login"))
	assert.Equal(t, "TC01", BuildTestCaseTitle("TC01", ""))
	assert.Equal(t, "Login", BuildTestCaseTitle("", "Login"))
	assert.Equal(t, "", BuildTestCaseTitle("", ""))

	long := strings.Repeat("あ", 150)
	title := BuildTestCaseTitle("TC01", long)
	assert.Equal(t, "TC01 - "+strings.Repeat("あ", 97)+"...", title)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"open page", "click login"}, SplitLines("open page\nclick login"))
	assert.Equal(t, []string{"one"}, SplitLines("  one  \n\n  "))
	assert.Nil(t, SplitLines(""))
}

func TestNameMatch(t *testing.T) {
	assert.True(t, NameMatch("Login", "login"))
	assert.True(t, NameMatch("Login flow", "login"))
	assert.True(t, NameMatch("login", "Sprint 12 - Login flow"))
	assert.False(t, NameMatch("Login", "Checkout"))
	assert.False(t, NameMatch("", "Login"))
}

func TestCellValue(t *testing.T) {
	row := []string{"a", " b ", ""}

	assert.Equal(t, "a", CellValue(row, 0))
	assert.Equal(t, "b", CellValue(row, 1))
	assert.Equal(t, "", CellValue(row, 2))
	assert.Equal(t, "", CellValue(row, 5))
	assert.Equal(t, "", CellValue(row, ColumnNone))
}
