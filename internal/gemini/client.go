// Package gemini wraps the Gemini API for summary and email generation.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/outstaffer/candidate-summary-api/internal/metrics"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Client generates content with a fixed model.
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New creates a Gemini client against the public Gemini API backend.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: model, logger: logger}, nil
}

// GenerateHTML generates HTML output for the prompt, attaching resume files
// as inline parts, and strips any markdown code fences from the answer.
func (c *Client) GenerateHTML(ctx context.Context, prompt string, resumes []summary.ResumeFile) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, r := range resumes {
		parts = append(parts, genai.NewPartFromBytes(r.Data, r.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	metrics.ObserveGeneration("html", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	c.logger.Info("generated html",
		zap.String("model", c.model),
		zap.Int("attachments", len(resumes)),
		zap.Int("length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return CleanHTML(text), nil
}

// GenerateText returns the raw text answer for the prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	metrics.ObserveGeneration("text", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

var (
	openFence  = regexp.MustCompile("^```(?:html)?[ \t]*\n")
	closeFence = regexp.MustCompile("\n```[ \t]*$")
)

// CleanHTML strips the markdown code fences models wrap HTML answers in.
func CleanHTML(text string) string {
	out := strings.TrimSpace(text)
	out = openFence.ReplaceAllString(out, "")
	out = closeFence.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
