package parser

import (
	"regexp"
	"strings"
)

// Semantic header patterns, checked against normalized label cells. The
// vocabularies mix English, Japanese and Vietnamese because real sheets
// freely mix all three, typos included.
var (
	idPattern        = regexp.MustCompile(`^id$|^no$|^stt$|順番`)
	testTypePattern  = regexp.MustCompile(`^type$|test.*type|種別`)
	functionPattern  = regexp.MustCompile(`^function|^funtion|機能|chức.*năng`)
	testCasePattern  = regexp.MustCompile(`test.*case|test.*item|項目|test.*nội.*dung`)
	actionPattern    = regexp.MustCompile(`^action|操作|thao.*tác|^step$|test.*step`)
	expectedPattern  = regexp.MustCompile(`expected.*result|期待.*結果|kết.*quả.*mong.*đợi|^result$`)
	targetPattern    = regexp.MustCompile(`^target$|^対象$|đối.*tượng`)
	acPattern        = regexp.MustCompile(`^ac$|acceptance.*criteria|受入.*基準`)
	userStoryPattern = regexp.MustCompile(`^us$|user.*story|ユーザー.*ストーリー`)
	notePattern      = regexp.MustCompile(`^note$|^備考$|ghi.*chú`)

	devicePattern     = regexp.MustCompile(`chrome|firefox|safari|edge|android|ios|iphone|ipad|^prod$|^stg|environment|version|deploy.*gate|testflight`)
	deviceNotePattern = regexp.MustCompile(`^note$`)
)

// normalizeLabel lowercases and collapses a header cell for matching.
func normalizeLabel(cell string) string {
	return strings.ToLower(strings.TrimSpace(EnsureUTF8(cell)))
}

// ParseHeader classifies the header region of a test-case sheet into a
// column mapping. headerRows carries the header region (the labels live
// on its last row); deviceRow, when non-nil, carries device names that
// replace header-derived device columns to the right of the target
// column.
//
// Classification walks left to right and stops collecting semantic
// columns at the first note column. Later matches overwrite earlier ones
// so that the rightmost occurrence of a repeated label wins.
func ParseHeader(headerRows [][]string, deviceRow []string) ColumnMapping {
	mapping := NewColumnMapping()
	if len(headerRows) == 0 {
		return mapping
	}
	labels := headerRows[len(headerRows)-1]

	for i, cell := range labels {
		label := normalizeLabel(cell)
		if label == "" {
			continue
		}
		if notePattern.MatchString(label) {
			break
		}
		switch {
		case idPattern.MatchString(label):
			mapping.ID = i
		case testTypePattern.MatchString(label):
			mapping.TestType = i
		case functionPattern.MatchString(label):
			mapping.Function = i
		case testCasePattern.MatchString(label):
			mapping.TestCase = i
		case actionPattern.MatchString(label):
			mapping.Action = i
		case expectedPattern.MatchString(label):
			mapping.ExpectedResult = i
		case targetPattern.MatchString(label):
			mapping.Target = i
		case acPattern.MatchString(label):
			mapping.AcceptanceCriteria = i
		case userStoryPattern.MatchString(label):
			mapping.UserStory = i
		case devicePattern.MatchString(label):
			mapping.DeviceColumns = append(mapping.DeviceColumns, DeviceColumn{Index: i, Name: strings.TrimSpace(EnsureUTF8(cell))})
		}
	}

	if deviceRow != nil {
		addDeviceRowColumns(&mapping, labels, deviceRow)
	}

	mapping.DeviceColumns = dedupeDevices(mapping.DeviceColumns)
	return mapping
}

// addDeviceRowColumns merges device names from a dedicated device-name
// row. Only cells to the right of the target column count, and the scan
// stops at a note label. A header-derived device keeps its column when
// the device row names the same index; the dedupe pass prefers the
// first occurrence.
func addDeviceRowColumns(mapping *ColumnMapping, labels, deviceRow []string) {
	if mapping.Target == ColumnNone {
		return
	}
	if RowContainsStatus(deviceRow, mapping.Target) {
		return
	}
	var fromRow []DeviceColumn
	for i := mapping.Target + 1; i < len(deviceRow); i++ {
		if i < len(labels) && deviceNotePattern.MatchString(normalizeLabel(labels[i])) {
			break
		}
		name := strings.TrimSpace(EnsureUTF8(deviceRow[i]))
		if name == "" {
			continue
		}
		if deviceNotePattern.MatchString(strings.ToLower(name)) {
			break
		}
		fromRow = append(fromRow, DeviceColumn{Index: i, Name: name})
	}
	mapping.DeviceColumns = append(mapping.DeviceColumns, fromRow...)
}

// dedupeDevices keeps the first device seen per column index, preserving
// order of first appearance.
func dedupeDevices(devices []DeviceColumn) []DeviceColumn {
	if len(devices) < 2 {
		return devices
	}
	seen := make(map[int]bool, len(devices))
	out := devices[:0]
	for _, d := range devices {
		if seen[d.Index] {
			continue
		}
		seen[d.Index] = true
		out = append(out, d)
	}
	return out
}

// Bug sheet header patterns.
var (
	bugNoPattern       = regexp.MustCompile(`^no$|^stt$`)
	bugContentPattern  = regexp.MustCompile(`^content$|^mô tả$|^bug content$|^nội dung$`)
	bugAppPattern      = regexp.MustCompile(`^application$|^app$`)
	bugCategoryPattern = regexp.MustCompile(`^category|^loại$|^biến thể`)
	bugPriorityPattern = regexp.MustCompile(`^priority$|mức độ ưu tiên|độ ưu tiên`)
	bugDevPattern      = regexp.MustCompile(`^dev$|^developer$`)
	bugTesterPattern   = regexp.MustCompile(`^test$|^tester$`)
	bugStatusPattern   = regexp.MustCompile(`^status$|trạng thái`)
	bugMediaPattern    = regexp.MustCompile(`^image|^video|^gyazo|link.*ảnh`)
	bugTypePattern     = regexp.MustCompile(`^bug.*type$|^loại.*bug$`)
)

// ParseBugHeader classifies a bug sheet header row.
func ParseBugHeader(labels []string) BugColumnMapping {
	mapping := NewBugColumnMapping()
	for i, cell := range labels {
		label := normalizeLabel(cell)
		if label == "" {
			continue
		}
		switch {
		case bugNoPattern.MatchString(label):
			mapping.No = i
		case bugContentPattern.MatchString(label):
			mapping.Content = i
		case bugAppPattern.MatchString(label):
			mapping.Application = i
		case bugCategoryPattern.MatchString(label):
			mapping.Category = i
		case bugPriorityPattern.MatchString(label):
			mapping.Priority = i
		case bugDevPattern.MatchString(label):
			mapping.Dev = i
		case bugTesterPattern.MatchString(label):
			mapping.Tester = i
		case bugStatusPattern.MatchString(label):
			mapping.Status = i
		case bugTypePattern.MatchString(label):
			mapping.BugType = i
		case bugMediaPattern.MatchString(label):
			mapping.Media = i
		}
	}
	return mapping
}
