package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry defaults. The Sheets read quota refills on a one minute window,
// so waiting a full minute before retrying is the only wait that
// reliably clears it.
const (
	DefaultQuotaCooldown = 60 * time.Second
	DefaultMaxRetries    = 3
)

// RetryClient wraps a Client and absorbs rate-limit errors by waiting
// out the quota window. Non-rate-limit errors pass through immediately.
// When every retry is consumed the error becomes ErrQuotaExceeded.
type RetryClient struct {
	inner      Client
	cooldown   time.Duration
	maxRetries uint64
	logger     *slog.Logger
}

// RetryOption configures a RetryClient.
type RetryOption func(*RetryClient)

// WithCooldown overrides the wait between rate-limited attempts.
func WithCooldown(d time.Duration) RetryOption {
	return func(c *RetryClient) {
		c.cooldown = d
	}
}

// WithMaxRetries overrides how many times a rate-limited call is
// retried.
func WithMaxRetries(n uint64) RetryOption {
	return func(c *RetryClient) {
		c.maxRetries = n
	}
}

// WithRetryLogger sets the structured logger. Defaults to slog.Default.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(c *RetryClient) {
		c.logger = logger
	}
}

// NewRetryClient wraps inner with quota-aware retry.
func NewRetryClient(inner Client, opts ...RetryOption) *RetryClient {
	c := &RetryClient{
		inner:      inner,
		cooldown:   DefaultQuotaCooldown,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSheets implements Client.
func (c *RetryClient) ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	var infos []SheetInfo
	err := c.retry(ctx, "ListSheets", spreadsheetID, func() error {
		var err error
		infos, err = c.inner.ListSheets(ctx, spreadsheetID)
		return err
	})
	return infos, err
}

// GetRows implements Client.
func (c *RetryClient) GetRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	var rows [][]string
	err := c.retry(ctx, "GetRows", spreadsheetID, func() error {
		var err error
		rows, err = c.inner.GetRows(ctx, spreadsheetID, sheetName)
		return err
	})
	return rows, err
}

// retry runs op, waiting out the quota window on ErrRateLimited. A fresh
// BackOff is built per call because the implementation is stateful.
func (c *RetryClient) retry(ctx context.Context, op, spreadsheetID string, fn func() error) error {
	attempt := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cooldown), c.maxRetries), ctx)

	err := backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return backoff.Permanent(err)
		}
		attempt++
		c.logger.Warn("sheets rate limited, waiting for quota window",
			"op", op,
			"spreadsheetId", spreadsheetID,
			"attempt", attempt,
			"cooldown", c.cooldown)
		return err
	}, policy)

	if err != nil && errors.Is(err, ErrRateLimited) {
		return fmt.Errorf("%s %s: %w", op, spreadsheetID, ErrQuotaExceeded)
	}
	return err
}
