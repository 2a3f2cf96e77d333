package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/prompts"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// EmailRequest describes a combined client email covering several candidates.
type EmailRequest struct {
	PromptID           string
	ClientName         string
	JobTitle           string
	JobURL             string
	ProcessedSummaries map[string]string
	PreferredCandidate string
	CandidatesData     string
	AdditionalContext  string
	Resumes            []summary.ResumeFile
}

// GenerateClientEmail builds a multi-candidate email from the given prompt
// and substitutes the [HERE_LINK] placeholder with the job URL.
func (p *Pipeline) GenerateClientEmail(ctx context.Context, req EmailRequest) (string, error) {
	if req.PromptID == "" {
		return "", fmt.Errorf("email generation requires a prompt id")
	}
	prompt, err := p.registry.Get(ctx, req.PromptID)
	if err != nil {
		return "", fmt.Errorf("resolve prompt: %w", err)
	}

	names := make([]string, 0, len(req.ProcessedSummaries))
	for name := range req.ProcessedSummaries {
		names = append(names, name)
	}
	sort.Strings(names)

	var summaries strings.Builder
	for _, name := range names {
		fmt.Fprintf(&summaries, "### %s\n%s\n\n", name, req.ProcessedSummaries[name])
	}

	fullPrompt := prompts.BuildMultiPrompt(prompt, prompts.MultiData{
		ClientName:         req.ClientName,
		JobURL:             req.JobURL,
		JobTitle:           req.JobTitle,
		ProcessedSummaries: summaries.String(),
		CandidateNames:     strings.Join(names, ", "),
		PreferredCandidate: req.PreferredCandidate,
		CandidatesData:     req.CandidatesData,
		AdditionalContext:  req.AdditionalContext,
	})

	html, err := p.gen.GenerateHTML(ctx, fullPrompt, req.Resumes)
	if err != nil {
		return "", fmt.Errorf("generate email: %w", err)
	}
	html = prompts.ReplaceHereLink(html, req.JobURL)

	p.logger.Info("client email generated",
		zap.String("prompt_id", prompt.ID),
		zap.Int("candidates", len(names)),
		zap.Int("length", len(html)),
	)
	return html, nil
}
