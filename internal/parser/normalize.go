package parser

import (
	"regexp"
	"strings"

	"testhub/internal/model"
)

// EnsureUTF8 replaces invalid byte sequences with the replacement rune.
// Spreadsheet exports occasionally carry broken encodings and the rest of
// the pipeline assumes valid UTF-8.
func EnsureUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// CellValue returns the trimmed cell at idx, or "" when the column is
// absent or the row is too short.
func CellValue(row []string, idx int) string {
	if idx == ColumnNone || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(EnsureUTF8(row[idx]))
}

// NormalizeTestType maps a raw type cell to a test type. Anything that
// does not mention UI counts as a feature test.
func NormalizeTestType(raw string) model.TestType {
	v := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(v, "ui") || strings.Contains(v, "design") || strings.Contains(v, "デザイン") {
		return model.TestTypeUI
	}
	return model.TestTypeFeature
}

var targetSeparators = regexp.MustCompile(`[・、,+\s/]+`)

// NormalizeTarget maps a raw target cell to a platform. Separators and
// casing vary wildly between sheets, so the cell is reduced to its
// platform tokens first. Unrecognized or blank values default to the
// widest platform.
func NormalizeTarget(raw string) model.Target {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = targetSeparators.ReplaceAllString(v, "")
	switch {
	case v == "pcsp" || v == "sppc":
		return model.TargetPCSP
	case v == "pcspapp" || v == "spapppc" || v == "all":
		return model.TargetPCSPApp
	case v == "pc":
		return model.TargetPC
	case v == "sp":
		return model.TargetSP
	case v == "app" || v == "aos" || v == "ios":
		return model.TargetApp
	default:
		return model.TargetPCSPApp
	}
}

var (
	statusPassPattern    = regexp.MustCompile(`pass|^ok$|success|成功`)
	statusFailPattern    = regexp.MustCompile(`fail|error|失敗|^ng$`)
	statusNotRunPattern  = regexp.MustCompile(`not.*run|未実施|skip|pending`)
	statusBlockedPattern = regexp.MustCompile(`block|ブロック`)
)

// NormalizeTestStatus maps a raw result cell to a test status. Blank
// means the lane was never executed; anything else unrecognized is kept
// as unknown rather than guessed.
func NormalizeTestStatus(raw string) model.TestStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return model.StatusNotRun
	case statusPassPattern.MatchString(v):
		return model.StatusPass
	case statusFailPattern.MatchString(v):
		return model.StatusFail
	case statusNotRunPattern.MatchString(v):
		return model.StatusNotRun
	case statusBlockedPattern.MatchString(v):
		return model.StatusBlocked
	default:
		return model.StatusUnknown
	}
}

// NormalizeApplication maps a raw bug application cell to a platform.
func NormalizeApplication(raw string) model.BugApplication {
	v := strings.ToLower(strings.TrimSpace(raw))
	compact := targetSeparators.ReplaceAllString(v, "")
	switch {
	case compact == "sppc" || compact == "pcsp":
		return model.BugApplicationSPPC
	case compact == "app" || compact == "aos" || compact == "ios":
		return model.BugApplicationApp
	case compact == "sp":
		return model.BugApplicationSP
	case compact == "pc":
		return model.BugApplicationPC
	case compact == "all" || compact == "sppcapp" || compact == "pcspapp":
		return model.BugApplicationAll
	default:
		return model.BugApplicationSPPC
	}
}

// NormalizeBugCategory maps a raw category cell to an environment bucket.
func NormalizeBugCategory(raw string) model.BugCategory {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "prod"):
		return model.BugCategoryProd
	case strings.Contains(v, "requirement") || strings.Contains(v, "yêu cầu"):
		return model.BugCategoryNewRequirement
	case strings.Contains(v, "jp"):
		return model.BugCategoryStgJP
	case strings.Contains(v, "vn"):
		return model.BugCategoryStgVN
	default:
		return model.BugCategoryStgVN
	}
}

// NormalizeBugPriority maps a raw priority cell to a priority level.
func NormalizeBugPriority(raw string) model.BugPriority {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "high") || strings.Contains(v, "cao"):
		return model.BugPriorityHigh
	case strings.Contains(v, "low") || strings.Contains(v, "thấp"):
		return model.BugPriorityLow
	default:
		return model.BugPriorityNormal
	}
}

// NormalizeBugStatus maps a raw status cell to a workflow state.
func NormalizeBugStatus(raw string) model.BugStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "done") || strings.Contains(v, "đã xong") || v == "ok":
		return model.BugStatusDone
	case strings.Contains(v, "fixing") || strings.Contains(v, "đang sửa"):
		return model.BugStatusFixing
	case strings.Contains(v, "testing") || strings.Contains(v, "đang test"):
		return model.BugStatusTesting
	case strings.Contains(v, "pending") || strings.Contains(v, "chờ"):
		return model.BugStatusPending
	default:
		return model.BugStatusNew
	}
}

// NormalizeBugType maps a raw bug-type cell to new or old bug.
func NormalizeBugType(raw string) model.BugType {
	v := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(v, "old") || strings.Contains(v, "既存") || strings.Contains(v, "cũ") {
		return model.BugTypeOld
	}
	return model.BugTypeNew
}

const maxFunctionTitleRunes = 100

// BuildTestCaseTitle synthesizes a stable natural-key title from the id
// and function cells. Returns "" when neither carries anything, in which
// case the caller skips the row.
func BuildTestCaseTitle(id, function string) string {
	id = strings.TrimSpace(id)
	function = strings.TrimSpace(function)
	switch {
	case id != "" && function != "":
		return id + " - " + TruncateRunes(function, maxFunctionTitleRunes)
	case id != "":
		return id
	case function != "":
		return TruncateRunes(function, maxFunctionTitleRunes)
	default:
		return ""
	}
}

// TruncateRunes shortens s to at most max runes, appending "..." when it
// had to cut. The ellipsis counts against the limit.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// SplitLines splits cell content into trimmed, non-empty lines.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(EnsureUTF8(s), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// NameMatch reports whether two names refer to the same thing: exact
// match after folding, or either containing the other. Sheet tabs and
// subtask titles rarely agree exactly, so containment in both directions
// is accepted.
func NameMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
