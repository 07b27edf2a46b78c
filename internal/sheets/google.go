package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// GoogleClient reads spreadsheets through the Google Sheets API using a
// service-account credential.
type GoogleClient struct {
	svc    *sheetsv4.Service
	logger *slog.Logger
}

// GoogleOption configures a GoogleClient.
type GoogleOption func(*GoogleClient)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) GoogleOption {
	return func(c *GoogleClient) {
		c.logger = logger
	}
}

// NewGoogleClient builds a client from a service-account credentials
// file.
func NewGoogleClient(ctx context.Context, credentialsFile string, opts ...GoogleOption) (*GoogleClient, error) {
	svc, err := sheetsv4.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c := &GoogleClient{svc: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListSheets returns the spreadsheet's tabs.
func (c *GoogleClient) ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets(properties(title,sheetId))").
		Context(ctx).Do()
	if err != nil {
		return nil, c.mapError(err, spreadsheetID)
	}

	infos := make([]SheetInfo, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		infos = append(infos, SheetInfo{Title: s.Properties.Title, SheetID: s.Properties.SheetId})
	}
	return infos, nil
}

// GetRows returns the full value grid of one tab.
func (c *GoogleClient) GetRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, "'"+sheetName+"'").
		Context(ctx).Do()
	if err != nil {
		return nil, c.mapError(err, spreadsheetID)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mapError folds API errors into the package sentinels so callers never
// see transport-level types.
func (c *GoogleClient) mapError(err error, spreadsheetID string) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("spreadsheet %s: %w", spreadsheetID, err)
	}
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		// Quota exhaustion also arrives as a 403, distinguishable only
		// by the error reason.
		if quotaReason(apiErr) {
			return fmt.Errorf("spreadsheet %s: %w", spreadsheetID, ErrRateLimited)
		}
		c.logger.Warn("sheets auth failure", "spreadsheetId", spreadsheetID, "code", apiErr.Code)
		return fmt.Errorf("spreadsheet %s: %w", spreadsheetID, ErrAuthFailed)
	case http.StatusNotFound:
		return fmt.Errorf("spreadsheet %s: %w", spreadsheetID, ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("spreadsheet %s: %w", spreadsheetID, ErrRateLimited)
	default:
		return fmt.Errorf("spreadsheet %s: %w", spreadsheetID, err)
	}
}

func quotaReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}
