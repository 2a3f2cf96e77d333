package bulk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// EmailRequest asks for a combined client email over a finished bulk job.
type EmailRequest struct {
	BulkJobID          string
	PromptID           string
	ClientName         string
	PreferredCandidate string
	AdditionalContext  string
	// LinkURL overrides the RecruitCRM job page as the [HERE_LINK] target.
	LinkURL string
}

// GenerateEmail builds the client email from a completed bulk job's
// successful summaries and stores it on the job for later retrieval.
func (s *Service) GenerateEmail(ctx context.Context, req EmailRequest) (string, error) {
	job, err := s.jobs.GetBulkJob(ctx, req.BulkJobID)
	if err != nil {
		return "", err
	}
	if job.Status != summary.BulkStatusComplete {
		return "", fmt.Errorf("bulk job %s is %s, email needs a complete job", job.ID, job.Status)
	}

	summaries := make(map[string]string)
	for slug, res := range job.Results {
		if res.Status != summary.BulkResultSuccess {
			continue
		}
		name := res.CandidateName
		if name == "" {
			name = slug
		}
		summaries[name] = res.Summary
	}
	if len(summaries) == 0 {
		return "", fmt.Errorf("bulk job %s has no successful summaries", job.ID)
	}

	jobTitle := ""
	clientName := req.ClientName
	if record, err := s.ats.Job(ctx, job.JobSlug); err == nil {
		jobTitle = record.Name
		if clientName == "" {
			clientName = record.CompanyName
		}
	} else {
		s.logger.Warn("job record unavailable for email", zap.String("job", job.JobSlug), zap.Error(err))
	}
	if clientName == "" {
		clientName = "Valued Client"
	}
	link := req.LinkURL
	if link == "" {
		link = jobURL(job.JobSlug)
	}

	html, err := s.pipe.GenerateClientEmail(ctx, pipeline.EmailRequest{
		PromptID:           req.PromptID,
		ClientName:         clientName,
		JobTitle:           jobTitle,
		JobURL:             link,
		ProcessedSummaries: summaries,
		PreferredCandidate: req.PreferredCandidate,
		AdditionalContext:  req.AdditionalContext,
	})
	if err != nil {
		return "", err
	}

	job.EmailHTML = html
	if err := s.jobs.UpdateBulkJob(ctx, job); err != nil {
		s.logger.Error("bulk email persist failed", zap.String("bulk_job_id", job.ID), zap.Error(err))
	}
	return html, nil
}

// jobURL is the RecruitCRM job page linked from client emails.
func jobURL(jobSlug string) string {
	return "https://app.recruitcrm.io/jobs/" + jobSlug
}
