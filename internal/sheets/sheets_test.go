package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "full url",
			url:  "https://docs.google.com/spreadsheets/d/1AbC_d-9xyz/edit#gid=123",
			want: "1AbC_d-9xyz",
		},
		{
			name: "bare id",
			url:  "1AbC_d-9xyz",
			want: "1AbC_d-9xyz",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
		{
			name: "unrelated url",
			url:  "https://example.com/page?x=1",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSpreadsheetID(tt.url))
		})
	}
}

func TestExtractGID(t *testing.T) {
	assert.Equal(t, "123", ExtractGID("https://docs.google.com/spreadsheets/d/abc/edit#gid=123"))
	assert.Equal(t, "0", ExtractGID("https://docs.google.com/spreadsheets/d/abc?gid=0"))
	assert.Equal(t, "", ExtractGID("https://docs.google.com/spreadsheets/d/abc/edit"))
}

// fakeClient fails with the configured errors in order, then succeeds.
type fakeClient struct {
	errs  []error
	calls int
	rows  [][]string
}

func (f *fakeClient) ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return []SheetInfo{{Title: "Sheet1", SheetID: 0}}, nil
}

func (f *fakeClient) GetRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return f.rows, nil
}

func (f *fakeClient) nextErr() error {
	f.calls++
	if f.calls <= len(f.errs) {
		return f.errs[f.calls-1]
	}
	return nil
}

func TestRetryClientRecovers(t *testing.T) {
	inner := &fakeClient{errs: []error{ErrRateLimited, ErrRateLimited}}
	client := NewRetryClient(inner, WithCooldown(time.Millisecond), WithMaxRetries(3))

	infos, err := client.ListSheets(context.Background(), "sheet-id")
	require.NoError(t, err)

	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, []SheetInfo{{Title: "Sheet1", SheetID: 0}}, infos)
}

func TestRetryClientQuotaExceeded(t *testing.T) {
	inner := &fakeClient{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	client := NewRetryClient(inner, WithCooldown(time.Millisecond), WithMaxRetries(3))

	_, err := client.GetRows(context.Background(), "sheet-id", "Sheet1")

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 4, inner.calls)
}

func TestRetryClientPermanentError(t *testing.T) {
	inner := &fakeClient{errs: []error{ErrNotFound}}
	client := NewRetryClient(inner, WithCooldown(time.Millisecond), WithMaxRetries(3))

	_, err := client.GetRows(context.Background(), "sheet-id", "Sheet1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryClientContextCancelled(t *testing.T) {
	inner := &fakeClient{errs: []error{ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited}}
	client := NewRetryClient(inner, WithCooldown(time.Hour), WithMaxRetries(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListSheets(ctx, "sheet-id")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
