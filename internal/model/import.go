package model

import (
	"fmt"
	"time"
)

// ImportSource identifies one remote spreadsheet for a single import run.
type ImportSource struct {
	SpreadsheetID string `json:"spreadsheetId"`
	// GID selects a single tab by its sheet id. Empty means default
	// (first sheet, or all sheets when AllSheets is set).
	GID string `json:"gid,omitempty"`
	// SheetFilter restricts the run to the named tab. Used for shared
	// workbooks where many tasks live in one spreadsheet.
	SheetFilter string `json:"sheetFilter,omitempty"`
	// AllSheets processes every tab instead of just the first.
	AllSheets bool `json:"allSheets,omitempty"`
	// WipeExisting deletes the destination's imported children before
	// the run. Applied only after sheet resolution succeeds.
	WipeExisting bool `json:"wipeExisting,omitempty"`
}

// ImportResult accumulates counters and per-row errors across one run.
type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	UpdatedCount  int      `json:"updatedCount"`
	SkippedCount  int      `json:"skippedCount"`
	Errors        []string `json:"errors,omitempty"`
}

// NewImportResult creates an empty result.
func NewImportResult() *ImportResult {
	return &ImportResult{Errors: []string{}}
}

// AddRowError records a per-row failure with its sheet and 1-based
// absolute row number, and counts the row as skipped.
func (r *ImportResult) AddRowError(sheetName string, rowNumber int, msg string) {
	r.Errors = append(r.Errors, fmt.Sprintf("row %d in sheet %q: %s", rowNumber, sheetName, msg))
	r.SkippedCount++
}

// AddError records a non-row-scoped error without touching the counters.
func (r *ImportResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Merge folds another result into this one.
func (r *ImportResult) Merge(other *ImportResult) {
	if other == nil {
		return
	}
	r.ImportedCount += other.ImportedCount
	r.UpdatedCount += other.UpdatedCount
	r.SkippedCount += other.SkippedCount
	r.Errors = append(r.Errors, other.Errors...)
}

// Import run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// ImportRun is the persisted record of one import execution (manual or
// scheduled).
type ImportRun struct {
	ID            string     `json:"id"`
	ProjectID     int64      `json:"projectId"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
	ImportedCount int        `json:"importedCount"`
	UpdatedCount  int        `json:"updatedCount"`
	SkippedCount  int        `json:"skippedCount"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	LogOutput     string     `json:"logOutput,omitempty"`
}
