package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/gemini"
	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

type multiCandidatesRequest struct {
	JobSlug            string   `json:"job_slug"`
	CandidateSlugs     []string `json:"candidate_slugs"`
	PromptType         string   `json:"prompt_type"`
	ClientName         string   `json:"client_name"`
	PreferredCandidate string   `json:"preferred_candidate"`
	AdditionalContext  string   `json:"additional_context"`
}

// generateMultipleCandidates produces one combined client email directly from
// candidate records, without per-candidate summaries. Candidates that cannot
// be fetched are skipped.
func (s *Server) generateMultipleCandidates(w http.ResponseWriter, r *http.Request) {
	var req multiCandidatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.JobSlug == "" || len(req.CandidateSlugs) == 0 {
		writeError(w, http.StatusBadRequest, "missing job_slug or candidate_slugs")
		return
	}
	promptID := req.PromptType
	if promptID == "" {
		promptID = "client-email.detailed"
	}

	job, err := s.ats.Job(r.Context(), req.JobSlug)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch job data")
		return
	}

	var (
		data    strings.Builder
		resumes []summary.ResumeFile
		fetched int
	)
	for i, slug := range req.CandidateSlugs {
		candidate, err := s.ats.Candidate(r.Context(), slug)
		if err != nil {
			s.logger.Warn("skipping candidate for multi email",
				zap.String("candidate", slug), zap.Error(err))
			continue
		}
		fetched++
		fmt.Fprintf(&data, "\n**CANDIDATE %d: %s**\n", i+1, candidate.FullName())

		if link := candidate.Resume.Link(); link != "" {
			if raw, err := s.ats.DownloadFile(r.Context(), link); err == nil {
				if rf, err := gemini.BuildResumeFile(candidate.Resume.Filename, raw); err == nil {
					resumes = append(resumes, rf)
					data.WriteString("Resume: Available for AI analysis\n")
				}
			}
		}
		if job.AlpharunJobID() != "" && candidate.InterviewID() != "" {
			data.WriteString("Interview: Completed\n")
		}
	}
	if fetched == 0 {
		writeError(w, http.StatusBadRequest, "no valid candidate data could be retrieved")
		return
	}

	html, err := s.pipe.GenerateClientEmail(r.Context(), pipeline.EmailRequest{
		PromptID:           promptID,
		ClientName:         req.ClientName,
		JobTitle:           job.Name,
		JobURL:             "https://app.recruitcrm.io/jobs/" + req.JobSlug,
		PreferredCandidate: req.PreferredCandidate,
		CandidatesData:     data.String(),
		AdditionalContext:  req.AdditionalContext,
		Resumes:            resumes,
	})
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"generated_content": html,
	})
}

type curatedRequest struct {
	JobSlug            string   `json:"job_slug"`
	CandidateSlugs     []string `json:"candidate_slugs"`
	SinglePrompt       string   `json:"single_prompt_type"`
	MultiPrompt        string   `json:"multi_prompt_type"`
	AutoPush           bool     `json:"auto_push"`
	GenerateSummaries  bool     `json:"generate_summaries"`
	GenerateEmail      *bool    `json:"generate_email"`
	ClientName         string   `json:"client_name"`
	JobURL             string   `json:"job_url"`
	PreferredCandidate string   `json:"preferred_candidate"`
	AdditionalContext  string   `json:"additional_context"`
}

type curatedSummary struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	HTML string `json:"html"`
}

// processCuratedCandidates generates per-candidate summaries for a hand-picked
// list, optionally pushing each summary to the candidate record and closing
// with a combined client email. Runs synchronously; candidates that fail are
// reported in the failures map rather than failing the request.
func (s *Server) processCuratedCandidates(w http.ResponseWriter, r *http.Request) {
	var req curatedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	generateEmail := boolOrDefault(req.GenerateEmail, true)
	if !req.GenerateSummaries && !generateEmail {
		writeError(w, http.StatusBadRequest, "No action requested.")
		return
	}
	if req.JobSlug == "" || len(req.CandidateSlugs) == 0 {
		writeError(w, http.StatusBadRequest, "job_slug and candidate_slugs are required")
		return
	}

	job, err := s.ats.Job(r.Context(), req.JobSlug)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch job data")
		return
	}

	singlePrompt := req.SinglePrompt
	if singlePrompt == "" {
		singlePrompt = "recruitment.detailed"
	}

	summaries := []curatedSummary{}
	failures := map[string]string{}
	for _, slug := range req.CandidateSlugs {
		res, err := s.pipe.GenerateSummary(r.Context(), pipeline.Request{
			CandidateSlug: slug,
			JobSlug:       req.JobSlug,
			PromptID:      singlePrompt,
			IncludeResume: true,
		})
		if err != nil {
			failures[slug] = err.Error()
			s.logger.Warn("curated candidate failed",
				zap.String("candidate", slug), zap.Error(err))
			continue
		}
		summaries = append(summaries, curatedSummary{
			Name: res.CandidateName,
			Slug: slug,
			HTML: res.SummaryHTML,
		})
		if req.AutoPush && req.GenerateSummaries {
			if err := s.ats.PushSummary(r.Context(), slug, res.SummaryHTML); err != nil {
				s.logger.Warn("curated summary push failed",
					zap.String("candidate", slug), zap.Error(err))
			}
		}
	}

	response := map[string]any{"success": true}
	if req.GenerateSummaries {
		response["summaries"] = summaries
		response["failures"] = failures
	}
	if generateEmail {
		var emailHTML string
		if len(summaries) > 0 {
			processed := make(map[string]string, len(summaries))
			for _, item := range summaries {
				processed[item.Name] = item.HTML
			}
			multiPrompt := req.MultiPrompt
			if multiPrompt == "" {
				multiPrompt = "client-email.detailed"
			}
			emailHTML, err = s.pipe.GenerateClientEmail(r.Context(), pipeline.EmailRequest{
				PromptID:           multiPrompt,
				ClientName:         req.ClientName,
				JobTitle:           job.Name,
				JobURL:             req.JobURL,
				ProcessedSummaries: processed,
				PreferredCandidate: req.PreferredCandidate,
				AdditionalContext:  req.AdditionalContext,
			})
			if err != nil {
				// The summaries already exist, so the response still carries
				// them with an empty email.
				s.logger.Error("curated email generation failed",
					zap.String("job", req.JobSlug), zap.Error(err))
			}
		}
		response["email_html"] = emailHTML
	}
	writeJSON(w, http.StatusOK, response)
}
