package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// SingleData carries the serialized source material for one candidate brief.
type SingleData struct {
	CandidateData     string
	JobData           string
	InterviewData     string
	Transcript        *summary.TranscriptText
	AdditionalContext string
}

const transcriptHeading = "**RECRUITER-LED INTERVIEW TRANSCRIPT:**"

// BuildSinglePrompt assembles the complete model prompt: system prompt, the
// HTML template the model must follow, and the user prompt with all data
// sections substituted.
func BuildSinglePrompt(p *summary.Prompt, d SingleData) string {
	firefliesSection := transcriptHeading + "\nNot provided."
	if d.Transcript != nil && d.Transcript.Content != "" {
		title := d.Transcript.Title
		if title == "" {
			title = "N/A"
		}
		firefliesSection = "\n" + transcriptHeading + "\nTitle: " + title + "\n" + d.Transcript.Content
	}

	user := strings.NewReplacer(
		"{candidate_data}", d.CandidateData,
		"{job_data}", d.JobData,
		"{interview_data}", d.InterviewData,
		"{fireflies_section}", firefliesSection,
		"{additional_context}", d.AdditionalContext,
	).Replace(p.UserPrompt)

	return withTemplate(p) + "\n\n" + user
}

// MultiData carries the material for a combined multi-candidate client email.
type MultiData struct {
	ClientName         string
	JobURL             string
	JobTitle           string
	ProcessedSummaries string
	CandidateNames     string
	PreferredCandidate string
	CandidatesData     string
	AdditionalContext  string
}

// BuildMultiPrompt assembles the prompt for a multi-candidate email.
func BuildMultiPrompt(p *summary.Prompt, d MultiData) string {
	user := strings.NewReplacer(
		"{client_name}", d.ClientName,
		"{job_url}", d.JobURL,
		"{job_title}", d.JobTitle,
		"{processed_summaries}", d.ProcessedSummaries,
		"{candidate_names}", d.CandidateNames,
		"{preferred_candidate}", d.PreferredCandidate,
		"{candidates_data}", d.CandidatesData,
		"{additional_context}", d.AdditionalContext,
	).Replace(p.UserPrompt)

	return withTemplate(p) + "\n\n" + user
}

func withTemplate(p *summary.Prompt) string {
	if p.Template == "" {
		return p.SystemPrompt
	}
	return p.SystemPrompt + "\n\n**HTML template (paste into ATS)**\n```html\n" + p.Template + "\n```"
}

// FormatData renders an API payload as indented JSON for prompt inclusion.
func FormatData(data any) string {
	if data == nil {
		return "Not provided."
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(encoded)
}

// ReplaceHereLink substitutes the [HERE_LINK] placeholder emitted by email
// prompts with an anchor to the given URL.
func ReplaceHereLink(html, url string) string {
	if url == "" {
		return html
	}
	return strings.ReplaceAll(html, "[HERE_LINK]", fmt.Sprintf(`<a href="%s">here</a>`, url))
}
