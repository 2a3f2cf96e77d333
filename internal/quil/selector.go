package quil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Selector picks the Quil note that belongs to a given job. Candidates often
// carry Quil notes from several processes, so when more than one note exists
// the model decides which title matches the job.
type Selector struct {
	gen    summary.Generator
	logger *zap.Logger
}

// NewSelector builds a Selector.
func NewSelector(gen summary.Generator, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{gen: gen, logger: logger}
}

const selectPromptTemplate = `You are matching interview notes to a job.
Job: %s

Notes:
%s
Answer with JSON only: {"index": <zero-based index of the note that belongs to this job>}`

// BestInterview returns the Quil interview most relevant to the job.
// It returns summary.ErrNotFound when the candidate has no Quil notes.
func (s *Selector) BestInterview(ctx context.Context, notes []summary.Note, jobName string) (*summary.QuilInterview, error) {
	interviews := make([]summary.QuilInterview, 0, len(notes))
	for _, n := range notes {
		if IsQuilNote(n) {
			interviews = append(interviews, ParseNote(n))
		}
	}
	if len(interviews) == 0 {
		return nil, fmt.Errorf("no quil notes: %w", summary.ErrNotFound)
	}
	if len(interviews) == 1 {
		return &interviews[0], nil
	}

	var list strings.Builder
	for i, iv := range interviews {
		fmt.Fprintf(&list, "%d. %s (%s)\n", i, iv.Title, iv.Date)
	}
	answer, err := s.gen.GenerateText(ctx, fmt.Sprintf(selectPromptTemplate, jobName, list.String()))
	if err != nil {
		s.logger.Warn("quil note selection failed, using most recent note", zap.Error(err))
		return &interviews[0], nil
	}
	idx, err := parseIndex(answer)
	if err != nil || idx < 0 || idx >= len(interviews) {
		s.logger.Warn("quil note selection unparseable, using most recent note",
			zap.String("answer", answer),
		)
		return &interviews[0], nil
	}
	return &interviews[idx], nil
}

// parseIndex leniently extracts {"index": n} from a model answer, tolerating
// code fences and surrounding prose.
func parseIndex(answer string) (int, error) {
	payload := extractJSON(answer)
	if payload == "" {
		return 0, fmt.Errorf("no JSON object in answer")
	}
	var parsed struct {
		Index json.Number `json:"index"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return 0, fmt.Errorf("decode selection answer: %w", err)
	}
	n, err := parsed.Index.Int64()
	if err != nil {
		return 0, fmt.Errorf("selection index not a number: %w", err)
	}
	return int(n), nil
}

// extractJSON returns the first top-level JSON object in the text.
func extractJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return ""
	}
	return cleaned[start : end+1]
}
