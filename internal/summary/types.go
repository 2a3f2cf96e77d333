// Package summary defines core types shared across subsystems.
package summary

import (
	"strings"
	"time"
)

// Custom field names RecruitCRM uses to link records to the interview vendor.
const (
	FieldAIJobID       = "AI Job ID"
	FieldAIInterviewID = "AI Interview ID"
)

// CustomField is a RecruitCRM custom field attached to a candidate or job.
type CustomField struct {
	FieldName string `json:"field_name"`
	Label     string `json:"label,omitempty"`
	Value     string `json:"value"`
}

// Resume describes the resume file attached to a candidate record.
type Resume struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	FileLink string `json:"file_link,omitempty"`
}

// Link returns the downloadable URL, preferring the signed file link.
func (r *Resume) Link() string {
	if r == nil {
		return ""
	}
	if r.FileLink != "" {
		return r.FileLink
	}
	return r.URL
}

// Candidate is a RecruitCRM candidate record. Raw carries the full API
// payload for prompt assembly; the typed fields cover what the service
// inspects directly.
type Candidate struct {
	Slug         string         `json:"slug"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Resume       *Resume        `json:"resume,omitempty"`
	CustomFields []CustomField  `json:"custom_fields,omitempty"`
	Raw          map[string]any `json:"-"`
}

// FullName joins first and last name, trimming stray whitespace.
func (c *Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomFieldValue returns the value of the named custom field, or "".
func (c *Candidate) CustomFieldValue(name string) string {
	for _, f := range c.CustomFields {
		if f.FieldName == name || f.Label == name {
			return f.Value
		}
	}
	return ""
}

// InterviewID returns the AI Interview ID custom field with any query
// string stripped. RecruitCRM users paste full interview URLs into the
// field, so everything after '?' is discarded.
func (c *Candidate) InterviewID() string {
	return TrimInterviewID(c.CustomFieldValue(FieldAIInterviewID))
}

// TrimInterviewID strips the query-string portion of a pasted interview ID.
func TrimInterviewID(raw string) string {
	id, _, _ := strings.Cut(strings.TrimSpace(raw), "?")
	return id
}

// JobRecord is a RecruitCRM job record.
type JobRecord struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	CompanyName  string         `json:"company_name,omitempty"`
	Description  string         `json:"job_description_text,omitempty"`
	CustomFields []CustomField  `json:"custom_fields,omitempty"`
	Raw          map[string]any `json:"-"`
}

// AlpharunJobID returns the AI Job ID custom field, or "".
func (j *JobRecord) AlpharunJobID() string {
	for _, f := range j.CustomFields {
		if f.FieldName == FieldAIJobID || f.Label == FieldAIJobID {
			return f.Value
		}
	}
	return ""
}

// AssignedCandidate pairs a candidate with its pipeline status on a job.
type AssignedCandidate struct {
	Candidate Candidate `json:"candidate"`
	StatusID  int       `json:"status_id"`
}

// Stage is one step of the RecruitCRM hiring pipeline.
type Stage struct {
	StatusID       int    `json:"status_id"`
	Label          string `json:"label"`
	CandidateCount int    `json:"candidate_count,omitempty"`
}

// Interview is an AlphaRun interview payload.
type Interview struct {
	ContactFirstName string         `json:"contact_first_name,omitempty"`
	ContactLastName  string         `json:"contact_last_name,omitempty"`
	Raw              map[string]any `json:"-"`
}

// ContactName joins the interview contact's first and last name.
func (i *Interview) ContactName() string {
	return strings.TrimSpace(i.ContactFirstName + " " + i.ContactLastName)
}

// Transcript is a Fireflies meeting transcript.
type Transcript struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	URL       string               `json:"transcript_url,omitempty"`
	Sentences []TranscriptSentence `json:"sentences,omitempty"`
}

// TranscriptSentence is one utterance of a transcript.
type TranscriptSentence struct {
	SpeakerName string `json:"speaker_name"`
	Text        string `json:"text"`
}

// TranscriptText is a transcript normalised for prompt inclusion.
type TranscriptText struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Note is a RecruitCRM note attached to a candidate. Quil pushes interview
// summaries into RecruitCRM as notes whose description starts with "Quil ".
type Note struct {
	ID             int      `json:"id"`
	CreatedOn      string   `json:"created_on,omitempty"`
	Description    string   `json:"description"`
	AssociatedJobs []string `json:"associated_jobs,omitempty"`
}

// QuilInterview is the structured content extracted from a Quil note.
type QuilInterview struct {
	NoteID      int    `json:"note_id"`
	Date        string `json:"date,omitempty"`
	Title       string `json:"title,omitempty"`
	SummaryHTML string `json:"summary_html,omitempty"`
	Link        string `json:"quil_link,omitempty"`
}

// ResumeFile is a converted resume ready to attach to a model call.
type ResumeFile struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Prompt is a reusable prompt configuration. Prompts are slug-keyed and
// grouped by category ("single" or "multiple"); one prompt per category may
// be the default.
type Prompt struct {
	ID           string `json:"id" firestore:"-"`
	Name         string `json:"name" firestore:"name"`
	Slug         string `json:"slug" firestore:"slug"`
	Description  string `json:"description,omitempty" firestore:"description"`
	Category     string `json:"category" firestore:"category"`
	Type         string `json:"type" firestore:"type"`
	Enabled      bool   `json:"enabled" firestore:"enabled"`
	IsDefault    bool   `json:"is_default" firestore:"is_default"`
	SortOrder    int    `json:"sort_order" firestore:"sort_order"`
	SystemPrompt string `json:"system_prompt" firestore:"system_prompt"`
	Template     string `json:"template" firestore:"template"`
	UserPrompt   string `json:"user_prompt" firestore:"user_prompt"`
	CreatedAt    string `json:"created_at,omitempty" firestore:"created_at"`
	UpdatedAt    string `json:"updated_at,omitempty" firestore:"updated_at"`
	CreatedBy    string `json:"created_by,omitempty" firestore:"created_by"`
	UpdatedBy    string `json:"updated_by,omitempty" firestore:"updated_by"`
}

// Feedback is a user rating of a generated summary.
type Feedback struct {
	Rating        int       `json:"rating" firestore:"rating"`
	Comments      string    `json:"comments" firestore:"comments"`
	PromptType    string    `json:"prompt_type" firestore:"prompt_type"`
	SummaryHTML   string    `json:"generated_summary_html" firestore:"generated_summary_html"`
	CandidateSlug string    `json:"candidate_slug" firestore:"candidate_slug"`
	JobSlug       string    `json:"job_slug" firestore:"job_slug"`
	Timestamp     time.Time `json:"timestamp" firestore:"timestamp"`
}

// WebhookConfig controls the automated summary worker.
type WebhookConfig struct {
	Enabled                 bool   `json:"enabled" firestore:"enabled"`
	DefaultPromptID         string `json:"default_prompt_id" firestore:"default_prompt_id"`
	PromptCategory          string `json:"prompt_category" firestore:"prompt_category"`
	UseQuil                 bool   `json:"use_quil" firestore:"use_quil"`
	UseFireflies            bool   `json:"use_fireflies" firestore:"use_fireflies"`
	ProceedWithoutInterview bool   `json:"proceed_without_interview" firestore:"proceed_without_interview"`
	AdditionalContext       string `json:"additional_context" firestore:"additional_context"`
	AutoPush                bool   `json:"auto_push" firestore:"auto_push"`
	AutoPushDelaySeconds    int    `json:"auto_push_delay_seconds" firestore:"auto_push_delay_seconds"`
	CreateTrackingNote      bool   `json:"create_tracking_note" firestore:"create_tracking_note"`
	MaxConcurrentTasks      int    `json:"max_concurrent_tasks" firestore:"max_concurrent_tasks"`
	RateLimitPerMinute      int    `json:"rate_limit_per_minute" firestore:"rate_limit_per_minute"`
	PushSummaryToCandidate  bool   `json:"push_summary_to_candidate" firestore:"push_summary_to_candidate"`
	MoveToNextStage         bool   `json:"move_to_next_stage" firestore:"move_to_next_stage"`
	TargetStageID           int    `json:"target_stage_id" firestore:"target_stage_id"`
	UpdatedAt               string `json:"updated_at,omitempty" firestore:"updated_at"`
	UpdatedBy               string `json:"updated_by,omitempty" firestore:"updated_by"`
}

// DefaultWebhookConfig returns the config served when no document exists.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Enabled:                 true,
		DefaultPromptID:         "summary-for-platform-v2",
		PromptCategory:          "single",
		UseQuil:                 true,
		UseFireflies:            false,
		ProceedWithoutInterview: true,
		MaxConcurrentTasks:      5,
		RateLimitPerMinute:      10,
		TargetStageID:           726195,
	}
}

// TestResult records the outcome of one source availability check.
type TestResult struct {
	Success bool   `json:"success" firestore:"success"`
	Error   string `json:"error,omitempty" firestore:"error"`
	NoteID  int    `json:"note_id,omitempty" firestore:"note_id"`
}

// SourceUsage flags which data sources fed a summary.
type SourceUsage struct {
	Resume    bool `json:"resume" firestore:"resume"`
	AnnaAI    bool `json:"anna_ai" firestore:"anna_ai"`
	Quil      bool `json:"quil" firestore:"quil"`
	Fireflies bool `json:"fireflies" firestore:"fireflies"`
}

// GenerationResult captures the outcome of one model call.
type GenerationResult struct {
	Success         bool    `json:"success" firestore:"success"`
	SummaryLength   int     `json:"summary_length" firestore:"summary_length"`
	DurationSeconds float64 `json:"duration_seconds" firestore:"duration_seconds"`
	Error           string  `json:"error,omitempty" firestore:"error"`
}

// ActionResult records a post-generation action outcome.
type ActionResult struct {
	Success bool   `json:"success" firestore:"success"`
	Error   string `json:"error,omitempty" firestore:"error"`
	Message string `json:"message,omitempty" firestore:"message"`
}

// PostActions groups the optional actions taken after a successful run.
type PostActions struct {
	SummaryPush  *ActionResult `json:"summary_push" firestore:"summary_push"`
	NoteCreation *ActionResult `json:"note_creation" firestore:"note_creation"`
	StageMove    *ActionResult `json:"stage_move" firestore:"stage_move"`
}

// WorkerMetadata identifies the queue delivery that triggered a run.
type WorkerMetadata struct {
	WorkerVersion string `json:"worker_version" firestore:"worker_version"`
	CloudTaskID   string `json:"cloud_task_id" firestore:"cloud_task_id"`
	RetryAttempt  int    `json:"retry_attempt" firestore:"retry_attempt"`
}

// TriggeredBy identifies the RecruitCRM user whose action fired a webhook.
type TriggeredBy struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Run is the persisted record of one automated summary generation.
type Run struct {
	ID               string                `json:"id" firestore:"-"`
	CandidateSlug    string                `json:"candidate_slug" firestore:"candidate_slug"`
	JobSlug          string                `json:"job_slug" firestore:"job_slug"`
	CandidateName    string                `json:"candidate_name,omitempty" firestore:"candidate_name"`
	JobName          string                `json:"job_name,omitempty" firestore:"job_name"`
	Success          bool                  `json:"success" firestore:"success"`
	PromptID         string                `json:"prompt_id" firestore:"prompt_id"`
	TriggeredByEmail string                `json:"triggered_by_email,omitempty" firestore:"triggered_by_email"`
	Tests            map[string]TestResult `json:"tests" firestore:"tests"`
	SourcesUsed      SourceUsage           `json:"sources_used" firestore:"sources_used"`
	Generation       GenerationResult      `json:"generation" firestore:"generation"`
	PostActions      PostActions           `json:"post_actions" firestore:"post_actions"`
	WorkerMetadata   WorkerMetadata        `json:"worker_metadata" firestore:"worker_metadata"`
	ConfigUsed       WebhookConfig         `json:"config_used" firestore:"config_used"`
	SummaryHTML      string                `json:"summary_html,omitempty" firestore:"summary_html"`
	Timestamp        time.Time             `json:"timestamp" firestore:"timestamp"`
}

// BulkStatus is the lifecycle state of a bulk processing job.
type BulkStatus string

// Bulk job states persisted in the bulk job store.
const (
	BulkStatusProcessing BulkStatus = "processing"
	BulkStatusComplete   BulkStatus = "complete"
	BulkStatusFailed     BulkStatus = "failed"
)

// BulkResultStatus is the per-candidate state inside a bulk job.
type BulkResultStatus string

// Per-candidate result states.
const (
	BulkResultPending BulkResultStatus = "pending"
	BulkResultSuccess BulkResultStatus = "success"
	BulkResultFailed  BulkResultStatus = "failed"
)

// BulkResult is one candidate's outcome within a bulk job.
type BulkResult struct {
	Status        BulkResultStatus `json:"status" firestore:"status"`
	CandidateName string           `json:"candidate_name,omitempty" firestore:"candidate_name"`
	Summary       string           `json:"summary,omitempty" firestore:"summary"`
	Error         string           `json:"error,omitempty" firestore:"error"`
}

// BulkJob aggregates the state of an asynchronous multi-candidate run.
type BulkJob struct {
	ID              string                `json:"id" firestore:"-"`
	Status          BulkStatus            `json:"status" firestore:"status"`
	JobSlug         string                `json:"job_slug" firestore:"job_slug"`
	SinglePrompt    string                `json:"single_prompt" firestore:"single_prompt"`
	CandidateSlugs  []string              `json:"candidate_slugs" firestore:"candidate_slugs"`
	TotalCandidates int                   `json:"total_candidates" firestore:"total_candidates"`
	ProcessedCount  int                   `json:"processed_count" firestore:"processed_count"`
	Results         map[string]BulkResult `json:"results" firestore:"results"`
	EmailHTML       string                `json:"email_html,omitempty" firestore:"email_html"`
	Error           string                `json:"error,omitempty" firestore:"error"`
	Submitted       time.Time             `json:"submitted_at" firestore:"submitted_at"`
}

// Task is the payload relayed from the webhook endpoint to the worker.
type Task struct {
	CandidateSlug  string         `json:"candidate_slug"`
	JobSlug        string         `json:"job_slug"`
	WebhookPayload map[string]any `json:"webhook_payload,omitempty"`
	Delay          time.Duration  `json:"-"`
}
