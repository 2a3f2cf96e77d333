// Package alpharun implements the AlphaRun interview API client.
package alpharun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Options configures the Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the AlphaRun REST API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *zap.Logger
}

// New constructs a Client from options, applying sane defaults.
func New(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.alpharun.com/api/v1"
	}
	return &Client{baseURL: baseURL, apiKey: opts.APIKey, httpc: httpc, logger: logger}
}

// Interview fetches one interview under a job opening.
func (c *Client) Interview(ctx context.Context, jobOpeningID, interviewID string) (*summary.Interview, error) {
	path := c.baseURL + "/job-openings/" + url.PathEscape(jobOpeningID) + "/interviews/" + url.PathEscape(interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("build interview request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call alpharun: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read interview response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("interview %s: %w", interviewID, summary.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("alpharun error response",
			zap.String("interview_id", interviewID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("fetch interview %s: unexpected status %d", interviewID, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode interview response: %w", err)
	}
	return parseInterview(payload), nil
}

func parseInterview(payload map[string]any) *summary.Interview {
	m := payload
	if inner, ok := payload["data"].(map[string]any); ok {
		m = inner
	}
	iv := &summary.Interview{Raw: m}
	if contact, ok := m["contact"].(map[string]any); ok {
		iv.ContactFirstName, _ = contact["first_name"].(string)
		iv.ContactLastName, _ = contact["last_name"].(string)
	}
	if iv.ContactFirstName == "" {
		iv.ContactFirstName, _ = m["contact_first_name"].(string)
	}
	if iv.ContactLastName == "" {
		iv.ContactLastName, _ = m["contact_last_name"].(string)
	}
	return iv
}
