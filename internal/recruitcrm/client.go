// Package recruitcrm implements the RecruitCRM REST API client used for
// candidate, job, pipeline, and note operations.
package recruitcrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
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

// Client calls the RecruitCRM v1 REST API.
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
		baseURL = "https://api.recruitcrm.io/v1"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		httpc:   httpc,
		logger:  logger,
	}
}

// Candidate fetches a candidate record by slug.
func (c *Client) Candidate(ctx context.Context, slug string) (*summary.Candidate, error) {
	payload, err := c.getJSON(ctx, "/candidates/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate %s: %w", slug, err)
	}
	return parseCandidate(unwrapData(payload)), nil
}

// Job fetches a job record by slug, including its custom fields.
func (c *Client) Job(ctx context.Context, slug string) (*summary.JobRecord, error) {
	payload, err := c.getJSON(ctx, "/jobs/"+url.PathEscape(slug), url.Values{"include": {"custom_fields"}})
	if err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", slug, err)
	}
	return parseJob(unwrapData(payload)), nil
}

// AssignedCandidates lists candidates assigned to a job, optionally filtered
// by hiring stage. statusID <= 0 means no filter.
func (c *Client) AssignedCandidates(ctx context.Context, jobSlug string, statusID int) ([]summary.AssignedCandidate, error) {
	var q url.Values
	if statusID > 0 {
		q = url.Values{"status_id": {strconv.Itoa(statusID)}}
	}
	payload, err := c.getJSON(ctx, "/jobs/"+url.PathEscape(jobSlug)+"/assigned-candidates", q)
	if err != nil {
		return nil, fmt.Errorf("fetch assigned candidates for %s: %w", jobSlug, err)
	}
	items := unwrapList(payload)
	out := make([]summary.AssignedCandidate, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, parseAssignedCandidate(m))
	}
	return out, nil
}

// HiringPipeline lists the account-wide hiring stages.
func (c *Client) HiringPipeline(ctx context.Context) ([]summary.Stage, error) {
	payload, err := c.getJSON(ctx, "/hiring-pipeline", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch hiring pipeline: %w", err)
	}
	items := unwrapList(payload)
	out := make([]summary.Stage, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, summary.Stage{
			StatusID: getInt(m, "status_id"),
			Label:    getString(m, "label"),
		})
	}
	return out, nil
}

// AssociatedFields fetches the job-specific custom fields of a candidate.
func (c *Client) AssociatedFields(ctx context.Context, candidateSlug, jobSlug string) ([]summary.CustomField, error) {
	path := "/candidates/associated-field/" + url.PathEscape(candidateSlug) + "/" + url.PathEscape(jobSlug)
	payload, err := c.getJSON(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch associated fields %s/%s: %w", candidateSlug, jobSlug, err)
	}
	return parseCustomFields(unwrapData(payload)["custom_fields"]), nil
}

// CandidateNotes lists the notes attached to a candidate.
func (c *Client) CandidateNotes(ctx context.Context, candidateSlug string) ([]summary.Note, error) {
	payload, err := c.getJSON(ctx, "/candidates/"+url.PathEscape(candidateSlug)+"/notes", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch notes for %s: %w", candidateSlug, err)
	}
	items := unwrapList(payload)
	out := make([]summary.Note, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, summary.Note{
			ID:             getInt(m, "id"),
			CreatedOn:      getString(m, "created_on"),
			Description:    getString(m, "description"),
			AssociatedJobs: getStringSlice(m, "associated_jobs"),
		})
	}
	return out, nil
}

// PushSummary writes the generated summary HTML onto the candidate record.
// RecruitCRM updates candidates via multipart form posts.
func (c *Client) PushSummary(ctx context.Context, candidateSlug, summaryHTML string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("candidate_summary", summaryHTML); err != nil {
		return fmt.Errorf("encode summary field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/candidates/"+url.PathEscape(candidateSlug), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("push summary to %s: %w", candidateSlug, err)
	}
	c.logger.Info("summary pushed", zap.String("candidate", candidateSlug), zap.Int("length", len(summaryHTML)))
	return nil
}

// CreateNote creates a note on the candidate, associated with the job.
// Returns the created note's ID when the API reports one.
func (c *Client) CreateNote(ctx context.Context, candidateSlug, jobSlug, text string) (int, error) {
	reqBody := map[string]any{
		"description":     text,
		"related_to":      candidateSlug,
		"related_to_type": "candidate",
	}
	if jobSlug != "" {
		reqBody["associated_jobs"] = []string{jobSlug}
	}
	payload, err := c.postJSON(ctx, "/notes", reqBody)
	if err != nil {
		return 0, fmt.Errorf("create note for %s: %w", candidateSlug, err)
	}
	return getInt(unwrapData(payload), "id"), nil
}

// MoveStage moves the candidate to the given hiring stage on the job.
func (c *Client) MoveStage(ctx context.Context, candidateSlug, jobSlug string, stageID int) error {
	path := "/candidates/" + url.PathEscape(candidateSlug) + "/jobs/" + url.PathEscape(jobSlug)
	body := map[string]any{"status_id": stageID}
	if _, err := c.patchJSON(ctx, path, body); err != nil {
		return fmt.Errorf("move %s to stage %d: %w", candidateSlug, stageID, err)
	}
	c.logger.Info("stage moved",
		zap.String("candidate", candidateSlug),
		zap.String("job", jobSlug),
		zap.Int("stage_id", stageID),
	)
	return nil
}

// DownloadFile fetches a file (resume) from a RecruitCRM-hosted URL. The
// URLs are pre-signed, so no Authorization header is sent.
func (c *Client) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("download file: %w", summary.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

func (c *Client) patchJSON(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.sendJSON(ctx, http.MethodPatch, path, body)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any) (map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recruitcrm: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, summary.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("recruitcrm error response",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 256))
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
