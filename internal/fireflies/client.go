// Package fireflies implements the Fireflies.ai GraphQL client and the
// transcript URL/ID handling around it.
package fireflies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Transcript IDs are ULIDs, optionally embedded in share URLs of the form
// https://app.fireflies.ai/view/Meeting-Title::01HXXXXXXXXXXXXXXXXXXXXXXX
var ulidPattern = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// ExtractTranscriptID resolves a bare ULID or a Fireflies URL to the ULID.
func ExtractTranscriptID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("empty transcript reference")
	}
	if ulidPattern.MatchString(trimmed) {
		return trimmed, nil
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("not a transcript ID or URL: %q", input)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if decoded, err := url.PathUnescape(last); err == nil {
		last = decoded
	}
	parts := strings.Split(last, "::")
	candidate := parts[len(parts)-1]
	if !ulidPattern.MatchString(candidate) {
		return "", fmt.Errorf("no transcript ID in URL: %q", input)
	}
	return candidate, nil
}

const transcriptQuery = `query Transcript($transcriptId: String!) {
  transcript(id: $transcriptId) {
    id
    title
    transcript_url
    sentences {
      speaker_name
      text
    }
  }
}`

// Options configures the Client.
type Options struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the Fireflies GraphQL API.
type Client struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
	logger   *zap.Logger
}

// New constructs a Client from options, applying sane defaults.
func New(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "https://api.fireflies.ai/graphql"
	}
	return &Client{endpoint: endpoint, apiKey: opts.APIKey, httpc: httpc, logger: logger}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Transcript *struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			URL       string `json:"transcript_url"`
			Sentences []struct {
				SpeakerName string `json:"speaker_name"`
				Text        string `json:"text"`
			} `json:"sentences"`
		} `json:"transcript"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Transcript fetches a transcript by ULID.
func (c *Client) Transcript(ctx context.Context, id string) (*summary.Transcript, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     transcriptQuery,
		Variables: map[string]any{"transcriptId": id},
	})
	if err != nil {
		return nil, fmt.Errorf("encode transcript query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call fireflies: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read transcript response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("fireflies error response",
			zap.String("transcript_id", id),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("fetch transcript %s: unexpected status %d", id, resp.StatusCode)
	}

	var payload graphqlResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}
	if len(payload.Errors) > 0 {
		msg := payload.Errors[0].Message
		if strings.Contains(strings.ToLower(msg), "not found") {
			return nil, fmt.Errorf("transcript %s: %w", id, summary.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch transcript %s: %s", id, msg)
	}
	if payload.Data.Transcript == nil {
		return nil, fmt.Errorf("transcript %s: %w", id, summary.ErrNotFound)
	}

	tr := &summary.Transcript{
		ID:    payload.Data.Transcript.ID,
		Title: payload.Data.Transcript.Title,
		URL:   payload.Data.Transcript.URL,
	}
	for _, s := range payload.Data.Transcript.Sentences {
		tr.Sentences = append(tr.Sentences, summary.TranscriptSentence{
			SpeakerName: s.SpeakerName,
			Text:        s.Text,
		})
	}
	return tr, nil
}

// Normalize flattens a transcript to speaker-prefixed lines for prompts.
func Normalize(t *summary.Transcript) summary.TranscriptText {
	if t == nil {
		return summary.TranscriptText{}
	}
	lines := make([]string, 0, len(t.Sentences))
	for _, s := range t.Sentences {
		speaker := s.SpeakerName
		if speaker == "" {
			speaker = "Unknown"
		}
		lines = append(lines, speaker+": "+s.Text)
	}
	return summary.TranscriptText{
		Title:   t.Title,
		Content: strings.Join(lines, "\n"),
	}
}
