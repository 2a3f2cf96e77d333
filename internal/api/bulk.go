package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/outstaffer/candidate-summary-api/internal/bulk"
)

type stageWithCount struct {
	StatusID       int    `json:"status_id"`
	Label          string `json:"label"`
	CandidateCount int    `json:"candidate_count"`
}

// jobStagesWithCounts returns the hiring pipeline stages annotated with how
// many of the job's candidates sit in each stage.
func (s *Server) jobStagesWithCounts(w http.ResponseWriter, r *http.Request) {
	jobSlug := chi.URLParam(r, "job_slug")

	assigned, err := s.ats.AssignedCandidates(r.Context(), jobSlug, 0)
	if err != nil {
		writeError(w, errStatus(err), "no candidates found for this job or job not found")
		return
	}
	counts := make(map[int]int, len(assigned))
	for _, ac := range assigned {
		counts[ac.StatusID]++
	}

	stages, err := s.ats.HiringPipeline(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch the hiring pipeline")
		return
	}
	out := make([]stageWithCount, 0, len(stages))
	for _, st := range stages {
		out = append(out, stageWithCount{
			StatusID:       st.StatusID,
			Label:          st.Label,
			CandidateCount: counts[st.StatusID],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type stageCandidate struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func (s *Server) candidatesInStage(w http.ResponseWriter, r *http.Request) {
	jobSlug := chi.URLParam(r, "job_slug")
	stageID, err := strconv.Atoi(chi.URLParam(r, "stage_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid stage id")
		return
	}
	assigned, err := s.ats.AssignedCandidates(r.Context(), jobSlug, stageID)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch candidates")
		return
	}
	out := make([]stageCandidate, 0, len(assigned))
	for _, ac := range assigned {
		if ac.Candidate.Slug == "" {
			continue
		}
		out = append(out, stageCandidate{
			Slug: ac.Candidate.Slug,
			Name: ac.Candidate.FullName(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type bulkProcessRequest struct {
	JobSlug        string   `json:"job_slug"`
	JobURL         string   `json:"job_url"`
	SinglePrompt   string   `json:"single_candidate_prompt"`
	CandidateSlugs []string `json:"candidate_slugs"`
}

func (s *Server) bulkProcessJob(w http.ResponseWriter, r *http.Request) {
	var req bulkProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	jobSlug := req.JobSlug
	if jobSlug == "" {
		jobSlug = slugFromURL(req.JobURL)
	}
	if jobSlug == "" || req.SinglePrompt == "" || len(req.CandidateSlugs) == 0 {
		writeError(w, http.StatusBadRequest, "missing job_url, single_candidate_prompt, or candidate_slugs")
		return
	}
	id, err := s.bulk.StartJob(r.Context(), bulk.StartRequest{
		JobSlug:        jobSlug,
		CandidateSlugs: req.CandidateSlugs,
		PromptID:       req.SinglePrompt,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job started",
		"job_id":  id,
	})
}

func (s *Server) bulkJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.bulk.Job(r.Context(), chi.URLParam(r, "job_id"))
	if err != nil {
		writeError(w, errStatus(err), "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type bulkEmailRequest struct {
	JobID              string `json:"job_id"`
	MultiPrompt        string `json:"multi_candidate_prompt"`
	ClientName         string `json:"client_name"`
	PreferredCandidate string `json:"preferred_candidate"`
	AdditionalContext  string `json:"additional_context"`
	PlatformURL        string `json:"outstaffer_platform_url"`
}

func (s *Server) generateBulkEmail(w http.ResponseWriter, r *http.Request) {
	var req bulkEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.JobID == "" || req.MultiPrompt == "" {
		writeError(w, http.StatusBadRequest, "missing job_id or multi_candidate_prompt")
		return
	}
	html, err := s.bulk.GenerateEmail(r.Context(), bulk.EmailRequest{
		BulkJobID:          req.JobID,
		PromptID:           req.MultiPrompt,
		ClientName:         req.ClientName,
		PreferredCandidate: req.PreferredCandidate,
		AdditionalContext:  req.AdditionalContext,
		LinkURL:            req.PlatformURL,
	})
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"email_html": html,
	})
}

// slugFromURL extracts the trailing path segment of a RecruitCRM job URL.
func slugFromURL(url string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if trimmed == "" {
		return ""
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
