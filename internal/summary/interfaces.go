package summary

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that an upstream record or stored document does not
// exist. Handlers map it to 404 and the task worker treats it as permanent.
var ErrNotFound = errors.New("not found")

// ATS is the applicant tracking system (RecruitCRM).
type ATS interface {
	Candidate(ctx context.Context, slug string) (*Candidate, error)
	Job(ctx context.Context, slug string) (*JobRecord, error)
	AssignedCandidates(ctx context.Context, jobSlug string, statusID int) ([]AssignedCandidate, error)
	HiringPipeline(ctx context.Context) ([]Stage, error)
	AssociatedFields(ctx context.Context, candidateSlug, jobSlug string) ([]CustomField, error)
	CandidateNotes(ctx context.Context, candidateSlug string) ([]Note, error)
	PushSummary(ctx context.Context, candidateSlug, summaryHTML string) error
	CreateNote(ctx context.Context, candidateSlug, jobSlug, text string) (int, error)
	MoveStage(ctx context.Context, candidateSlug, jobSlug string, stageID int) error
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

// InterviewSource fetches AI interview records (AlphaRun).
type InterviewSource interface {
	Interview(ctx context.Context, jobOpeningID, interviewID string) (*Interview, error)
}

// TranscriptSource fetches meeting transcripts (Fireflies).
type TranscriptSource interface {
	Transcript(ctx context.Context, id string) (*Transcript, error)
}

// Generator produces model output (Gemini).
type Generator interface {
	// GenerateHTML returns cleaned HTML for the prompt, with resume files
	// attached to the model call as inline parts.
	GenerateHTML(ctx context.Context, prompt string, resumes []ResumeFile) (string, error)
	// GenerateText returns the raw text answer for the prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// PromptStore persists prompt configurations.
type PromptStore interface {
	ListPrompts(ctx context.Context, category string) ([]Prompt, error)
	GetPrompt(ctx context.Context, id string) (*Prompt, error)
	CreatePrompt(ctx context.Context, p Prompt) error
	UpdatePrompt(ctx context.Context, id string, fields map[string]any) error
	DeletePrompt(ctx context.Context, id string) error
	SetDefaultPrompt(ctx context.Context, id string) error
}

// FeedbackStore persists summary feedback.
type FeedbackStore interface {
	AddFeedback(ctx context.Context, fb Feedback) (string, error)
}

// RunFilter narrows run-log queries.
type RunFilter struct {
	Limit         int
	CandidateSlug string
	JobSlug       string
}

// RunStore persists automated run records.
type RunStore interface {
	AddRun(ctx context.Context, run Run) (string, error)
	ListRuns(ctx context.Context, f RunFilter) ([]Run, error)
}

// ConfigStore persists the webhook automation config document.
type ConfigStore interface {
	WebhookConfig(ctx context.Context) (WebhookConfig, error)
	// UpdateWebhookConfig merges the given fields into the config document.
	UpdateWebhookConfig(ctx context.Context, fields map[string]any) error
}

// BulkJobStore persists bulk job documents.
type BulkJobStore interface {
	CreateBulkJob(ctx context.Context, job BulkJob) error
	GetBulkJob(ctx context.Context, id string) (BulkJob, error)
	UpdateBulkJob(ctx context.Context, job BulkJob) error
}

// TaskQueue relays webhook-triggered work to the summary worker endpoint.
type TaskQueue interface {
	EnqueueSummaryTask(ctx context.Context, task Task) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job and document IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
