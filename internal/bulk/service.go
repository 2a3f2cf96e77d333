// Package bulk runs asynchronous multi-candidate summary jobs. Jobs are
// accepted immediately, processed by a background loop, and polled by the
// frontend through the bulk job store.
package bulk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/outstaffer/candidate-summary-api/internal/metrics"
	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Options configures the bulk service.
type Options struct {
	Pipeline   *pipeline.Pipeline
	ATS        summary.ATS
	Jobs       summary.BulkJobStore
	Config     summary.ConfigStore
	IDs        summary.IDGenerator
	Clock      summary.Clock
	Logger     *zap.Logger
	QueueDepth int
}

// Service accepts bulk jobs and processes them in the background.
type Service struct {
	pipe   *pipeline.Pipeline
	ats    summary.ATS
	jobs   summary.BulkJobStore
	config summary.ConfigStore
	ids    summary.IDGenerator
	clock  summary.Clock
	logger *zap.Logger

	queue   chan string
	closeMu sync.Mutex
	closed  bool
}

// New constructs a Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	depth := opts.QueueDepth
	if depth <= 0 {
		depth = 16
	}
	return &Service{
		pipe:   opts.Pipeline,
		ats:    opts.ATS,
		jobs:   opts.Jobs,
		config: opts.Config,
		ids:    opts.IDs,
		clock:  opts.Clock,
		logger: logger,
		queue:  make(chan string, depth),
	}
}

// StartRequest describes a bulk job submission.
type StartRequest struct {
	JobSlug        string
	CandidateSlugs []string
	PromptID       string
}

// StartJob persists a new bulk job in the processing state and hands it to
// the background loop. It returns the job ID for polling.
func (s *Service) StartJob(ctx context.Context, req StartRequest) (string, error) {
	if req.JobSlug == "" {
		return "", fmt.Errorf("bulk job requires a job slug")
	}
	if len(req.CandidateSlugs) == 0 {
		return "", fmt.Errorf("bulk job requires at least one candidate")
	}
	if req.PromptID == "" {
		return "", fmt.Errorf("bulk job requires a prompt id")
	}

	id, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("allocate job id: %w", err)
	}
	results := make(map[string]summary.BulkResult, len(req.CandidateSlugs))
	for _, slug := range req.CandidateSlugs {
		results[slug] = summary.BulkResult{Status: summary.BulkResultPending}
	}
	job := summary.BulkJob{
		ID:              id,
		Status:          summary.BulkStatusProcessing,
		JobSlug:         req.JobSlug,
		SinglePrompt:    req.PromptID,
		CandidateSlugs:  append([]string(nil), req.CandidateSlugs...),
		TotalCandidates: len(req.CandidateSlugs),
		Results:         results,
		Submitted:       s.clock.Now(),
	}
	if err := s.jobs.CreateBulkJob(ctx, job); err != nil {
		return "", fmt.Errorf("create bulk job: %w", err)
	}

	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return "", fmt.Errorf("bulk service is shutting down")
	}
	select {
	case s.queue <- id:
	default:
		return "", fmt.Errorf("bulk queue is full, retry later")
	}

	s.logger.Info("bulk job accepted",
		zap.String("bulk_job_id", id),
		zap.String("job", req.JobSlug),
		zap.Int("candidates", len(req.CandidateSlugs)),
	)
	return id, nil
}

// Job returns the current state of a bulk job.
func (s *Service) Job(ctx context.Context, id string) (summary.BulkJob, error) {
	return s.jobs.GetBulkJob(ctx, id)
}

// Run consumes the job queue until the context finishes.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			s.process(ctx, id)
		}
	}
}

// Close stops accepting new jobs.
func (s *Service) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	s.closed = true
}

// process runs every candidate of a job through the pipeline, updating the
// stored job after each candidate so polling reflects live progress.
func (s *Service) process(ctx context.Context, id string) {
	job, err := s.jobs.GetBulkJob(ctx, id)
	if err != nil {
		s.logger.Error("bulk job vanished before processing", zap.String("bulk_job_id", id), zap.Error(err))
		return
	}

	cfg := summary.DefaultWebhookConfig()
	if s.config != nil {
		if loaded, err := s.config.WebhookConfig(ctx); err == nil {
			cfg = loaded
		} else {
			s.logger.Warn("webhook config unavailable, using defaults", zap.Error(err))
		}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), 1)
	}

	succeeded := 0
	for _, slug := range job.CandidateSlugs {
		if err := limiter.Wait(ctx); err != nil {
			s.fail(ctx, job, fmt.Sprintf("processing interrupted: %v", err))
			return
		}

		res, err := s.pipe.GenerateSummary(ctx, pipeline.Request{
			CandidateSlug: slug,
			JobSlug:       job.JobSlug,
			PromptID:      job.SinglePrompt,
			UseQuil:       cfg.UseQuil,
			IncludeResume: true,
		})
		if err != nil {
			job.Results[slug] = summary.BulkResult{
				Status: summary.BulkResultFailed,
				Error:  err.Error(),
			}
			metrics.ObserveBulkCandidate("failed")
			s.logger.Warn("bulk candidate failed",
				zap.String("bulk_job_id", job.ID),
				zap.String("candidate", slug),
				zap.Error(err),
			)
		} else {
			job.Results[slug] = summary.BulkResult{
				Status:        summary.BulkResultSuccess,
				CandidateName: res.CandidateName,
				Summary:       res.SummaryHTML,
			}
			succeeded++
			metrics.ObserveBulkCandidate("success")
		}
		job.ProcessedCount++
		if err := s.jobs.UpdateBulkJob(ctx, job); err != nil {
			s.logger.Error("bulk job update failed", zap.String("bulk_job_id", job.ID), zap.Error(err))
		}
	}

	job.Status = summary.BulkStatusComplete
	if succeeded == 0 {
		job.Status = summary.BulkStatusFailed
		job.Error = "all candidates failed"
	}
	if err := s.jobs.UpdateBulkJob(ctx, job); err != nil {
		s.logger.Error("bulk job finalize failed", zap.String("bulk_job_id", job.ID), zap.Error(err))
	}
	metrics.ObserveBulkJob(string(job.Status))
	s.logger.Info("bulk job finished",
		zap.String("bulk_job_id", job.ID),
		zap.String("status", string(job.Status)),
		zap.Int("succeeded", succeeded),
		zap.Int("total", job.TotalCandidates),
	)
}

// fail marks the job failed. The write uses a detached context so shutdown
// still persists the terminal state.
func (s *Service) fail(ctx context.Context, job summary.BulkJob, msg string) {
	job.Status = summary.BulkStatusFailed
	job.Error = msg
	if err := s.jobs.UpdateBulkJob(context.WithoutCancel(ctx), job); err != nil {
		s.logger.Error("bulk job finalize failed", zap.String("bulk_job_id", job.ID), zap.Error(err))
	}
	metrics.ObserveBulkJob(string(summary.BulkStatusFailed))
}
