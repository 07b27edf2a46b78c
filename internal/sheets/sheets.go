// Package sheets provides read access to spreadsheet sources: the Google
// Sheets API for live imports and local workbook files for uploads. All
// backends return sheet tabs and raw string cell grids; interpretation
// belongs to the parser.
package sheets

import (
	"context"
	"errors"
	"regexp"
)

// Sentinel errors shared by all backends. Callers branch on these to
// decide whether a failure is retryable, fatal or a user mistake.
var (
	ErrAuthFailed    = errors.New("sheets: authentication failed")
	ErrNotFound      = errors.New("sheets: spreadsheet or sheet not found")
	ErrRateLimited   = errors.New("sheets: rate limited")
	ErrQuotaExceeded = errors.New("sheets: quota exceeded after retries")
)

// SheetInfo describes one tab of a spreadsheet.
type SheetInfo struct {
	Title   string `json:"title"`
	SheetID int64  `json:"sheetId"`
}

// Client reads spreadsheets. Implementations must be safe for concurrent
// use.
type Client interface {
	// ListSheets returns every tab of the spreadsheet in document order.
	ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error)
	// GetRows returns the full cell grid of one tab as raw strings.
	// Trailing empty cells may be absent, so rows are ragged.
	GetRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error)
}

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern           = regexp.MustCompile(`[?&#]gid=([0-9]+)`)
	bareIDPattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ExtractSpreadsheetID pulls the document id out of a Google Sheets URL.
// A bare id passes through unchanged; an empty or unrecognizable input
// returns "".
func ExtractSpreadsheetID(url string) string {
	if url == "" {
		return ""
	}
	if m := spreadsheetIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if bareIDPattern.MatchString(url) {
		return url
	}
	return ""
}

// ExtractGID pulls the tab id out of a Google Sheets URL fragment, or
// returns "".
func ExtractGID(url string) string {
	if m := gidPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}
