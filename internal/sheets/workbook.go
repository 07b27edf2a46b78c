package sheets

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook adapts a local xlsx file to the Client interface so uploaded
// workbooks run through the same import pipeline as remote spreadsheets.
// The spreadsheet id argument of the Client methods is ignored; a
// Workbook is always bound to exactly one file.
type Workbook struct {
	file *excelize.File
}

// OpenWorkbook opens an xlsx file from disk.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// ReadWorkbook opens an xlsx file from a stream, typically an upload
// body.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// ListSheets implements Client. The sheet index doubles as the sheet id.
func (w *Workbook) ListSheets(ctx context.Context, _ string) ([]SheetInfo, error) {
	names := w.file.GetSheetList()
	infos := make([]SheetInfo, 0, len(names))
	for i, name := range names {
		infos = append(infos, SheetInfo{Title: name, SheetID: int64(i)})
	}
	return infos, nil
}

// GetRows implements Client.
func (w *Workbook) GetRows(ctx context.Context, _ string, sheetName string) ([][]string, error) {
	rows, err := w.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, ErrNotFound)
	}
	return rows, nil
}
