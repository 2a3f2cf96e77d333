// Package pipeline assembles candidate summaries: it gathers the candidate,
// job, interview, transcript, Quil, and resume material, builds the prompt,
// and runs the model.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/outstaffer/candidate-summary-api/internal/fireflies"
	"github.com/outstaffer/candidate-summary-api/internal/gemini"
	"github.com/outstaffer/candidate-summary-api/internal/prompts"
	"github.com/outstaffer/candidate-summary-api/internal/quil"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Pipeline wires the data sources behind summary generation.
type Pipeline struct {
	ats         summary.ATS
	interviews  summary.InterviewSource
	transcripts summary.TranscriptSource
	selector    *quil.Selector
	gen         summary.Generator
	registry    *prompts.Registry
	logger      *zap.Logger
}

// New constructs a Pipeline.
func New(
	ats summary.ATS,
	interviews summary.InterviewSource,
	transcripts summary.TranscriptSource,
	selector *quil.Selector,
	gen summary.Generator,
	registry *prompts.Registry,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		ats:         ats,
		interviews:  interviews,
		transcripts: transcripts,
		selector:    selector,
		gen:         gen,
		registry:    registry,
		logger:      logger,
	}
}

// Request describes one summary generation.
type Request struct {
	CandidateSlug     string
	JobSlug           string
	PromptID          string
	FirefliesRef      string
	AdditionalContext string
	UseQuil           bool
	IncludeResume     bool
}

// Result is the outcome of a generation.
type Result struct {
	SummaryHTML   string
	CandidateName string
	JobName       string
	Sources       summary.SourceUsage
	Warnings      []string
}

// GenerateSummary runs the full single-candidate pipeline. Candidate and job
// fetches are blocking; every other source is optional and degrades to a
// warning when unavailable.
func (p *Pipeline) GenerateSummary(ctx context.Context, req Request) (*Result, error) {
	candidate, job, err := p.fetchCore(ctx, req.CandidateSlug, req.JobSlug)
	if err != nil {
		return nil, err
	}

	prompt, err := p.registry.Get(ctx, req.PromptID)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt: %w", err)
	}

	res := &Result{
		CandidateName: candidate.FullName(),
		JobName:       job.Name,
	}

	var (
		interview  *summary.Interview
		transcript summary.TranscriptText
		quilNote   *summary.QuilInterview
		resume     *summary.ResumeFile
	)

	g, gctx := errgroup.WithContext(ctx)
	warnings := make([]string, 4)

	g.Go(func() error {
		iv, warn := p.fetchInterview(gctx, candidate, job)
		interview, warnings[0] = iv, warn
		return nil
	})
	g.Go(func() error {
		tr, warn := p.fetchTranscript(gctx, req.FirefliesRef)
		transcript, warnings[1] = tr, warn
		return nil
	})
	g.Go(func() error {
		if !req.UseQuil {
			return nil
		}
		qn, warn := p.fetchQuil(gctx, candidate.Slug, job.Name)
		quilNote, warnings[2] = qn, warn
		return nil
	})
	g.Go(func() error {
		if !req.IncludeResume {
			return nil
		}
		rf, warn := p.fetchResume(gctx, candidate)
		resume, warnings[3] = rf, warn
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		if w != "" {
			res.Warnings = append(res.Warnings, w)
		}
	}

	interviewData := "Not provided."
	if interview != nil {
		interviewData = prompts.FormatData(interview.Raw)
		res.Sources.AnnaAI = true
	}
	var transcriptPtr *summary.TranscriptText
	if transcript.Content != "" {
		transcriptPtr = &transcript
		res.Sources.Fireflies = true
	}
	additional := req.AdditionalContext
	if quilNote != nil {
		additional = appendQuilContext(additional, quilNote)
		res.Sources.Quil = true
	}

	var attachments []summary.ResumeFile
	if resume != nil {
		attachments = append(attachments, *resume)
		res.Sources.Resume = true
	}

	fullPrompt := prompts.BuildSinglePrompt(prompt, prompts.SingleData{
		CandidateData:     prompts.FormatData(candidateData(candidate)),
		JobData:           prompts.FormatData(job.Raw),
		InterviewData:     interviewData,
		Transcript:        transcriptPtr,
		AdditionalContext: additional,
	})

	html, err := p.gen.GenerateHTML(ctx, fullPrompt, attachments)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	res.SummaryHTML = html

	p.logger.Info("summary generated",
		zap.String("candidate", req.CandidateSlug),
		zap.String("job", req.JobSlug),
		zap.String("prompt_id", prompt.ID),
		zap.Int("length", len(html)),
		zap.Strings("warnings", res.Warnings),
	)
	return res, nil
}

// fetchCore fetches the candidate and job in parallel and merges the
// job-specific custom fields into the candidate. Both records are required.
func (p *Pipeline) fetchCore(ctx context.Context, candidateSlug, jobSlug string) (*summary.Candidate, *summary.JobRecord, error) {
	var (
		candidate *summary.Candidate
		job       *summary.JobRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidate, err = p.ats.Candidate(gctx, candidateSlug)
		return err
	})
	g.Go(func() error {
		var err error
		job, err = p.ats.Job(gctx, jobSlug)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	fields, err := p.ats.AssociatedFields(ctx, candidateSlug, jobSlug)
	if err != nil {
		p.logger.Warn("associated fields unavailable",
			zap.String("candidate", candidateSlug),
			zap.String("job", jobSlug),
			zap.Error(err),
		)
	} else {
		candidate.CustomFields = mergeFields(candidate.CustomFields, fields)
	}
	return candidate, job, nil
}

func (p *Pipeline) fetchInterview(ctx context.Context, candidate *summary.Candidate, job *summary.JobRecord) (*summary.Interview, string) {
	jobID := job.AlpharunJobID()
	interviewID := candidate.InterviewID()
	if jobID == "" || interviewID == "" {
		return nil, "AI interview not linked"
	}
	iv, err := p.interviews.Interview(ctx, jobID, interviewID)
	if err != nil {
		p.logger.Warn("interview unavailable", zap.String("interview_id", interviewID), zap.Error(err))
		return nil, "AI interview unavailable: " + err.Error()
	}
	return iv, ""
}

func (p *Pipeline) fetchTranscript(ctx context.Context, ref string) (summary.TranscriptText, string) {
	if ref == "" {
		return summary.TranscriptText{}, ""
	}
	id, err := fireflies.ExtractTranscriptID(ref)
	if err != nil {
		return summary.TranscriptText{}, "fireflies reference invalid: " + err.Error()
	}
	tr, err := p.transcripts.Transcript(ctx, id)
	if err != nil {
		p.logger.Warn("transcript unavailable", zap.String("transcript_id", id), zap.Error(err))
		return summary.TranscriptText{}, "fireflies transcript unavailable: " + err.Error()
	}
	return fireflies.Normalize(tr), ""
}

func (p *Pipeline) fetchQuil(ctx context.Context, candidateSlug, jobName string) (*summary.QuilInterview, string) {
	notes, err := p.ats.CandidateNotes(ctx, candidateSlug)
	if err != nil {
		return nil, "candidate notes unavailable: " + err.Error()
	}
	iv, err := p.selector.BestInterview(ctx, notes, jobName)
	if err != nil {
		if errors.Is(err, summary.ErrNotFound) {
			return nil, "no Quil interview notes"
		}
		return nil, "quil note selection failed: " + err.Error()
	}
	return iv, ""
}

func (p *Pipeline) fetchResume(ctx context.Context, candidate *summary.Candidate) (*summary.ResumeFile, string) {
	link := candidate.Resume.Link()
	if link == "" {
		return nil, "no resume on file"
	}
	data, err := p.ats.DownloadFile(ctx, link)
	if err != nil {
		return nil, "resume download failed: " + err.Error()
	}
	rf, err := gemini.BuildResumeFile(candidate.Resume.Filename, data)
	if err != nil {
		return nil, "resume conversion failed: " + err.Error()
	}
	return &rf, ""
}

// candidateData flattens the candidate for prompt serialization, including
// the merged custom fields.
func candidateData(c *summary.Candidate) map[string]any {
	data := make(map[string]any, len(c.Raw)+1)
	for k, v := range c.Raw {
		data[k] = v
	}
	if len(c.CustomFields) > 0 {
		fields := make([]map[string]string, 0, len(c.CustomFields))
		for _, f := range c.CustomFields {
			fields = append(fields, map[string]string{
				"field_name": f.FieldName,
				"value":      f.Value,
			})
		}
		data["custom_fields"] = fields
	}
	return data
}

// mergeFields overlays job-specific fields on the candidate's own, replacing
// same-named entries.
func mergeFields(base, overlay []summary.CustomField) []summary.CustomField {
	merged := make([]summary.CustomField, 0, len(base)+len(overlay))
	replaced := make(map[string]bool, len(overlay))
	for _, f := range overlay {
		replaced[f.FieldName] = true
	}
	for _, f := range base {
		if !replaced[f.FieldName] {
			merged = append(merged, f)
		}
	}
	return append(merged, overlay...)
}

func appendQuilContext(additional string, iv *summary.QuilInterview) string {
	var sb strings.Builder
	sb.WriteString(additional)
	if additional != "" {
		sb.WriteString("\n\n")
	}
	sb.WriteString("**RECRUITER INTERVIEW NOTES (Quil")
	if iv.Date != "" {
		sb.WriteString(" " + iv.Date)
	}
	if iv.Title != "" {
		sb.WriteString(", " + iv.Title)
	}
	sb.WriteString("):**\n")
	sb.WriteString(iv.SummaryHTML)
	return sb.String()
}
