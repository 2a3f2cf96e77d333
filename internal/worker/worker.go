// Package worker runs the automated summary flow behind Cloud Tasks
// deliveries: source availability checks, generation, and the configured
// post-actions, with every run logged to the run store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/gemini"
	"github.com/outstaffer/candidate-summary-api/internal/metrics"
	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/quil"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Version tags run records with the worker build that produced them.
const Version = "go-worker/1.0.0"

// ErrDisabled reports that webhook automation is switched off in config.
var ErrDisabled = errors.New("webhook automation disabled")

// ErrNoInterview reports that neither AI nor Quil interview data exists and
// the config forbids proceeding without one.
var ErrNoInterview = errors.New("no interview data and proceeding without it is disabled")

// Options configures the Worker.
type Options struct {
	Pipeline   *pipeline.Pipeline
	ATS        summary.ATS
	Interviews summary.InterviewSource
	Selector   *quil.Selector
	Config     summary.ConfigStore
	Runs       summary.RunStore
	Clock      summary.Clock
	Logger     *zap.Logger
}

// Worker orchestrates one automated summary per task delivery.
type Worker struct {
	pipe       *pipeline.Pipeline
	ats        summary.ATS
	interviews summary.InterviewSource
	selector   *quil.Selector
	config     summary.ConfigStore
	runs       summary.RunStore
	clock      summary.Clock
	logger     *zap.Logger
}

// New constructs a Worker.
func New(opts Options) *Worker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		pipe:       opts.Pipeline,
		ats:        opts.ATS,
		interviews: opts.Interviews,
		selector:   opts.Selector,
		config:     opts.Config,
		runs:       opts.Runs,
		clock:      opts.Clock,
		logger:     logger,
	}
}

// Job is one task delivery.
type Job struct {
	CandidateSlug string
	JobSlug       string
	TriggeredBy   *summary.TriggeredBy
	Metadata      summary.WorkerMetadata
}

// Process runs the job end to end and persists the run record regardless of
// outcome. The returned error wraps summary.ErrNotFound for permanent
// failures the task queue must not retry.
func (w *Worker) Process(ctx context.Context, job Job) (*summary.Run, error) {
	cfg, err := w.config.WebhookConfig(ctx)
	if err != nil {
		w.logger.Warn("webhook config unavailable, using defaults", zap.Error(err))
		cfg = summary.DefaultWebhookConfig()
	}
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	run := summary.Run{
		CandidateSlug: job.CandidateSlug,
		JobSlug:       job.JobSlug,
		PromptID:      cfg.DefaultPromptID,
		Tests:         map[string]summary.TestResult{},
		ConfigUsed:    cfg,
		WorkerMetadata: summary.WorkerMetadata{
			WorkerVersion: Version,
			CloudTaskID:   job.Metadata.CloudTaskID,
			RetryAttempt:  job.Metadata.RetryAttempt,
		},
		Timestamp: w.clock.Now(),
	}
	if job.TriggeredBy != nil {
		run.TriggeredByEmail = job.TriggeredBy.Email
	}

	candidate, err := w.testCandidate(ctx, &run)
	if err != nil {
		return w.finish(ctx, &run, fmt.Errorf("candidate data: %w", err))
	}
	if err := w.testJob(ctx, &run); err != nil {
		return w.finish(ctx, &run, fmt.Errorf("job data: %w", err))
	}

	w.testResume(ctx, &run, candidate)
	w.testInterview(ctx, &run, candidate, job.JobSlug)
	if cfg.UseQuil {
		w.testQuil(ctx, &run, candidate, run.JobName)
	}

	hasInterview := run.SourcesUsed.AnnaAI || run.SourcesUsed.Quil
	if !hasInterview && !cfg.ProceedWithoutInterview {
		return w.finish(ctx, &run, ErrNoInterview)
	}
	if !hasInterview {
		w.logger.Warn("no interview data, proceeding per config",
			zap.String("candidate", job.CandidateSlug),
			zap.String("job", job.JobSlug),
		)
	}

	start := w.clock.Now()
	res, err := w.pipe.GenerateSummary(ctx, pipeline.Request{
		CandidateSlug:     job.CandidateSlug,
		JobSlug:           job.JobSlug,
		PromptID:          cfg.DefaultPromptID,
		AdditionalContext: cfg.AdditionalContext,
		UseQuil:           cfg.UseQuil,
		IncludeResume:     true,
	})
	duration := w.clock.Now().Sub(start)
	if err != nil {
		run.Generation = summary.GenerationResult{
			DurationSeconds: duration.Seconds(),
			Error:           err.Error(),
		}
		return w.finish(ctx, &run, fmt.Errorf("generate summary: %w", err))
	}

	run.Success = true
	run.SummaryHTML = res.SummaryHTML
	run.CandidateName = res.CandidateName
	run.JobName = res.JobName
	run.SourcesUsed = mergeSources(run.SourcesUsed, res.Sources)
	run.Generation = summary.GenerationResult{
		Success:         true,
		SummaryLength:   len(res.SummaryHTML),
		DurationSeconds: duration.Seconds(),
	}

	w.runPostActions(ctx, &run, cfg, job)

	return w.finish(ctx, &run, nil)
}

// finish persists the run and observes metrics. On failure it fills the
// generation block if nothing else has.
func (w *Worker) finish(ctx context.Context, run *summary.Run, cause error) (*summary.Run, error) {
	if cause != nil && run.Generation.Error == "" && !run.Generation.Success {
		run.Generation = summary.GenerationResult{Error: cause.Error()}
	}

	id, err := w.runs.AddRun(context.WithoutCancel(ctx), *run)
	if err != nil {
		w.logger.Error("run record persist failed",
			zap.String("candidate", run.CandidateSlug),
			zap.Error(err),
		)
	} else {
		run.ID = id
	}

	outcome := "success"
	if cause != nil {
		outcome = "error"
	}
	metrics.ObserveWorkerRun(outcome)

	if cause != nil {
		w.logger.Error("summary run failed",
			zap.String("candidate", run.CandidateSlug),
			zap.String("job", run.JobSlug),
			zap.Error(cause),
		)
		return run, cause
	}
	w.logger.Info("summary run complete",
		zap.String("candidate", run.CandidateSlug),
		zap.String("job", run.JobSlug),
		zap.String("run_id", run.ID),
		zap.Int("summary_length", run.Generation.SummaryLength),
	)
	return run, nil
}

func (w *Worker) testCandidate(ctx context.Context, run *summary.Run) (*summary.Candidate, error) {
	candidate, err := w.ats.Candidate(ctx, run.CandidateSlug)
	if err != nil {
		run.Tests["candidate_data"] = summary.TestResult{Error: err.Error()}
		return nil, err
	}
	run.Tests["candidate_data"] = summary.TestResult{Success: true}
	run.CandidateName = candidate.FullName()
	return candidate, nil
}

func (w *Worker) testJob(ctx context.Context, run *summary.Run) error {
	job, err := w.ats.Job(ctx, run.JobSlug)
	if err != nil {
		run.Tests["job_data"] = summary.TestResult{Error: err.Error()}
		return err
	}
	run.Tests["job_data"] = summary.TestResult{Success: true}
	run.JobName = job.Name
	return nil
}

func (w *Worker) testResume(ctx context.Context, run *summary.Run, candidate *summary.Candidate) {
	link := candidate.Resume.Link()
	if link == "" {
		run.Tests["cv_data"] = summary.TestResult{Error: "no resume on file"}
		return
	}
	data, err := w.ats.DownloadFile(ctx, link)
	if err != nil {
		run.Tests["cv_data"] = summary.TestResult{Error: err.Error()}
		return
	}
	if _, err := gemini.BuildResumeFile(candidate.Resume.Filename, data); err != nil {
		run.Tests["cv_data"] = summary.TestResult{Error: err.Error()}
		return
	}
	run.Tests["cv_data"] = summary.TestResult{Success: true}
	run.SourcesUsed.Resume = true
}

func (w *Worker) testInterview(ctx context.Context, run *summary.Run, candidate *summary.Candidate, jobSlug string) {
	job, err := w.ats.Job(ctx, jobSlug)
	if err != nil {
		run.Tests["ai_interview"] = summary.TestResult{Error: err.Error()}
		return
	}
	jobID := job.AlpharunJobID()
	interviewID := candidate.InterviewID()
	if jobID == "" || interviewID == "" {
		run.Tests["ai_interview"] = summary.TestResult{Error: "AI interview not linked"}
		return
	}
	if _, err := w.interviews.Interview(ctx, jobID, interviewID); err != nil {
		run.Tests["ai_interview"] = summary.TestResult{Error: err.Error()}
		return
	}
	run.Tests["ai_interview"] = summary.TestResult{Success: true}
	run.SourcesUsed.AnnaAI = true
}

func (w *Worker) testQuil(ctx context.Context, run *summary.Run, candidate *summary.Candidate, jobName string) {
	notes, err := w.ats.CandidateNotes(ctx, candidate.Slug)
	if err != nil {
		run.Tests["quil_interview"] = summary.TestResult{Error: err.Error()}
		return
	}
	iv, err := w.selector.BestInterview(ctx, notes, jobName)
	if err != nil {
		run.Tests["quil_interview"] = summary.TestResult{Error: err.Error()}
		return
	}
	run.Tests["quil_interview"] = summary.TestResult{Success: true, NoteID: iv.NoteID}
	run.SourcesUsed.Quil = true
}

// runPostActions executes the configured follow-up actions. Failures are
// recorded on the run but never fail the task, the summary already exists.
func (w *Worker) runPostActions(ctx context.Context, run *summary.Run, cfg summary.WebhookConfig, job Job) {
	if cfg.PushSummaryToCandidate || cfg.AutoPush {
		result := &summary.ActionResult{Success: true, Message: "summary pushed"}
		if err := w.ats.PushSummary(ctx, job.CandidateSlug, run.SummaryHTML); err != nil {
			result = &summary.ActionResult{Error: err.Error()}
		}
		run.PostActions.SummaryPush = result
	}

	if cfg.CreateTrackingNote {
		result := &summary.ActionResult{Success: true, Message: "tracking note created"}
		if _, err := w.ats.CreateNote(ctx, job.CandidateSlug, job.JobSlug, trackingNote(run, job.TriggeredBy)); err != nil {
			result = &summary.ActionResult{Error: err.Error()}
		}
		run.PostActions.NoteCreation = result
	}

	if cfg.MoveToNextStage {
		result := &summary.ActionResult{Success: true, Message: fmt.Sprintf("moved to stage %d", cfg.TargetStageID)}
		if err := w.ats.MoveStage(ctx, job.CandidateSlug, job.JobSlug, cfg.TargetStageID); err != nil {
			result = &summary.ActionResult{Error: err.Error()}
		}
		run.PostActions.StageMove = result
	}
}

// trackingNote renders the plain-text report note attached to the candidate.
func trackingNote(run *summary.Run, triggeredBy *summary.TriggeredBy) string {
	var sources []string
	if run.SourcesUsed.Resume {
		sources = append(sources, "Resume")
	}
	if run.SourcesUsed.AnnaAI {
		sources = append(sources, "Anna Ai")
	}
	if run.SourcesUsed.Quil {
		sources = append(sources, "Quil")
	}
	if run.SourcesUsed.Fireflies {
		sources = append(sources, "Fireflies")
	}
	used := strings.Join(sources, ", ")
	if used == "" {
		used = "None"
	}
	trigger := "System"
	if triggeredBy != nil && triggeredBy.Email != "" {
		trigger = triggeredBy.Email
	}

	var sb strings.Builder
	sb.WriteString("🤖 AI Summary Run - Report\n")
	sb.WriteString("Status: Success\n")
	fmt.Fprintf(&sb, "Candidate: %s\n", orNA(run.CandidateName))
	fmt.Fprintf(&sb, "Job: %s\n", orNA(run.JobName))
	fmt.Fprintf(&sb, "Prompt Used: %s\n", orNA(run.PromptID))
	fmt.Fprintf(&sb, "Sources Used: %s\n", used)
	fmt.Fprintf(&sb, "Triggered by: %s\n\n", trigger)
	sb.WriteString("This is an automated note from the AI Summary Worker.")
	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func mergeSources(a, b summary.SourceUsage) summary.SourceUsage {
	return summary.SourceUsage{
		Resume:    a.Resume || b.Resume,
		AnnaAI:    a.AnnaAI || b.AnnaAI,
		Quil:      a.Quil || b.Quil,
		Fireflies: a.Fireflies || b.Fireflies,
	}
}
