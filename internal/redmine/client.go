package redmine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin HTTP client for the Redmine REST API. It handles API
// key authentication, JSON decoding and retry with backoff on HTTP 429.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a Redmine client. baseURL is the root URL of the
// Redmine instance; apiKey is a personal API key sent on every request.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// GetIssue fetches one issue by numeric id.
func (c *Client) GetIssue(ctx context.Context, id int) (*Issue, error) {
	var resp issueResponse
	path := fmt.Sprintf("/issues/%d.json?include=children", id)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp.Issue, nil
}

// ListIssues fetches one page of issues for a project. query carries
// extra filters like status_id or updated_on ranges.
func (c *Client) ListIssues(ctx context.Context, projectID string, offset, limit int, query url.Values) ([]Issue, int, error) {
	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("project_id", projectID)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var resp issuesResponse
	if err := c.get(ctx, "/issues.json?"+q.Encode(), &resp); err != nil {
		return nil, 0, err
	}
	return resp.Issues, resp.TotalCount, nil
}

// get performs a GET and decodes the JSON response, retrying on 429.
func (c *Client) get(ctx context.Context, path string, result any) error {
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-Redmine-API-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request GET %s: %w", path, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429) on GET %s", path)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("authentication failed (%d): check the API key for %s", resp.StatusCode, c.baseURL)
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("not found (404) on GET %s", path)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d on GET %s: %s", resp.StatusCode, path, string(body))
		}

		if result == nil {
			return nil
		}
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header, falling back to
// exponential backoff when it is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
