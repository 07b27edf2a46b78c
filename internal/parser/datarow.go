package parser

import (
	"regexp"
	"strings"
)

var (
	statusTokenPattern = regexp.MustCompile(`^(pass|fail|failed|ok|ng|not.*run|skip|pending|block|blocked)$`)
	testCaseIDPattern  = regexp.MustCompile(`^tc\d+`)
	numericIDPattern   = regexp.MustCompile(`^\d+$`)
)

// FindTargetColumn locates the target column in a label row, or returns
// ColumnNone.
func FindTargetColumn(labels []string) int {
	for i, cell := range labels {
		if targetPattern.MatchString(normalizeLabel(cell)) {
			return i
		}
	}
	return ColumnNone
}

// RowContainsStatus reports whether any cell to the right of the target
// column holds a test status token or a TC-style id. Rows like that are
// data rows, never device-name rows.
func RowContainsStatus(row []string, targetCol int) bool {
	if targetCol == ColumnNone {
		return false
	}
	for i := targetCol + 1; i < len(row); i++ {
		cell := normalizeLabel(row[i])
		if cell == "" {
			continue
		}
		if statusTokenPattern.MatchString(cell) || testCaseIDPattern.MatchString(cell) {
			return true
		}
	}
	return false
}

// IsDataRow decides whether the first row after the header region is
// already test-case data rather than a device-name row. It checks, in
// order: a status token right of the target column, a TC-style id
// anywhere, then a numeric or TC-style id in the first four cells.
func IsDataRow(row []string, targetCol int) bool {
	if RowContainsStatus(row, targetCol) {
		return true
	}
	for _, cell := range row {
		if testCaseIDPattern.MatchString(normalizeLabel(cell)) {
			return true
		}
	}
	limit := 4
	if len(row) < limit {
		limit = len(row)
	}
	for i := 0; i < limit; i++ {
		cell := normalizeLabel(row[i])
		if numericIDPattern.MatchString(cell) || testCaseIDPattern.MatchString(cell) {
			return true
		}
	}
	return false
}

// rowTypeVocabPattern enumerates the type-cell values of genuine test
// rows. Sheets with a type column mark section banners and separator
// rows with other values.
var rowTypeVocabPattern = regexp.MustCompile(`(?i)^(feature|data|ui|design)$|機能|デザイン`)

// IsDecorativeRow reports whether the row's type cell rules it out as a
// test-case row. Rows with a blank type cell are kept; the type
// normalizer defaults them to feature.
func IsDecorativeRow(row []string, mapping ColumnMapping) bool {
	if mapping.TestType == ColumnNone {
		return false
	}
	v := CellValue(row, mapping.TestType)
	if v == "" {
		return false
	}
	return !rowTypeVocabPattern.MatchString(v)
}

// RowEmpty reports whether every cell is blank after trimming.
func RowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
