package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/fireflies"
	"github.com/outstaffer/candidate-summary-api/internal/gemini"
	"github.com/outstaffer/candidate-summary-api/internal/gmail"
	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "single"
	}
	list, err := s.registry.List(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not retrieve prompt list")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": list})
}

type slugRequest struct {
	CandidateSlug string `json:"candidate_slug"`
	JobSlug       string `json:"job_slug"`
}

func (s *Server) testCandidate(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" {
		writeError(w, http.StatusBadRequest, "missing candidate_slug")
		return
	}
	candidate, err := s.ats.Candidate(r.Context(), req.CandidateSlug)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch candidate data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"candidate_name": candidate.FullName(),
		"has_resume":     candidate.Resume.Link() != "",
		"interview_id":   candidate.InterviewID(),
	})
}

func (s *Server) testJob(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.JobSlug == "" {
		writeError(w, http.StatusBadRequest, "missing job_slug")
		return
	}
	job, err := s.ats.Job(r.Context(), req.JobSlug)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch job data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"job_name":        job.Name,
		"alpharun_job_id": job.AlpharunJobID(),
	})
}

type interviewTestRequest struct {
	CandidateSlug string `json:"candidate_slug"`
	JobSlug       string `json:"job_slug"`
	AlpharunJobID string `json:"alpharun_job_id"`
	InterviewID   string `json:"interview_id"`
}

// testInterview accepts either the AlphaRun IDs directly or a candidate and
// job slug pair to resolve them from.
func (s *Server) testInterview(w http.ResponseWriter, r *http.Request) {
	var req interviewTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	jobID := req.AlpharunJobID
	interviewID := summary.TrimInterviewID(req.InterviewID)

	if jobID == "" || interviewID == "" {
		if req.CandidateSlug == "" || req.JobSlug == "" {
			writeError(w, http.StatusBadRequest, "missing interview_id or alpharun_job_id")
			return
		}
		candidate, err := s.ats.Candidate(r.Context(), req.CandidateSlug)
		if err != nil {
			writeError(w, errStatus(err), "failed to fetch candidate data")
			return
		}
		job, err := s.ats.Job(r.Context(), req.JobSlug)
		if err != nil {
			writeError(w, errStatus(err), "failed to fetch job data")
			return
		}
		jobID, interviewID = job.AlpharunJobID(), candidate.InterviewID()
		if jobID == "" || interviewID == "" {
			writeError(w, http.StatusNotFound, "AI interview not linked")
			return
		}
	}

	iv, err := s.interviews.Interview(r.Context(), jobID, interviewID)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch interview data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"contact_name": iv.ContactName(),
	})
}

type firefliesTestRequest struct {
	TranscriptURL string `json:"transcript_url"`
}

func (s *Server) testFireflies(w http.ResponseWriter, r *http.Request) {
	var req firefliesTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TranscriptURL == "" {
		writeError(w, http.StatusBadRequest, "missing transcript_url")
		return
	}
	id, err := fireflies.ExtractTranscriptID(req.TranscriptURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid Fireflies URL or transcript ID")
		return
	}
	tr, err := s.transcripts.Transcript(r.Context(), id)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch transcript data")
		return
	}
	title := tr.Title
	if title == "" {
		title = "Unknown Title"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"transcript_id":  id,
		"meeting_title":  title,
		"sentence_count": len(tr.Sentences),
	})
}

func (s *Server) testResume(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" {
		writeError(w, http.StatusBadRequest, "missing candidate_slug")
		return
	}
	candidate, err := s.ats.Candidate(r.Context(), req.CandidateSlug)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch candidate data")
		return
	}
	link := candidate.Resume.Link()
	if link == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "No resume on file for this candidate.",
		})
		return
	}
	data, err := s.ats.DownloadFile(r.Context(), link)
	if err != nil {
		writeError(w, errStatus(err), "failed to download resume")
		return
	}
	if _, err := gemini.BuildResumeFile(candidate.Resume.Filename, data); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": candidate.Resume.Filename,
	})
}

func (s *Server) testQuil(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" {
		writeError(w, http.StatusBadRequest, "missing candidate_slug")
		return
	}
	notes, err := s.ats.CandidateNotes(r.Context(), req.CandidateSlug)
	if err != nil {
		writeError(w, errStatus(err), "failed to fetch candidate notes")
		return
	}
	jobName := ""
	if req.JobSlug != "" {
		if job, err := s.ats.Job(r.Context(), req.JobSlug); err == nil {
			jobName = job.Name
		}
	}
	iv, err := s.selector.BestInterview(r.Context(), notes, jobName)
	if err != nil {
		if errors.Is(err, summary.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"message": "No Quil interview notes found.",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to select Quil note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"note_id":   iv.NoteID,
		"title":     iv.Title,
		"date":      iv.Date,
		"quil_link": iv.Link,
	})
}

type generateSummaryRequest struct {
	CandidateSlug     string `json:"candidate_slug"`
	JobSlug           string `json:"job_slug"`
	PromptType        string `json:"prompt_type"`
	FirefliesURL      string `json:"fireflies_url"`
	AdditionalContext string `json:"additional_context"`
	UseQuil           *bool  `json:"use_quil"`
	IncludeResume     *bool  `json:"include_resume"`
}

func (s *Server) generateSummary(w http.ResponseWriter, r *http.Request) {
	var req generateSummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" || req.JobSlug == "" {
		writeError(w, http.StatusBadRequest, "missing required RecruitCRM fields")
		return
	}
	promptID := req.PromptType
	if promptID == "" {
		promptID = "recruitment.detailed"
	}

	res, err := s.pipe.GenerateSummary(r.Context(), pipeline.Request{
		CandidateSlug:     req.CandidateSlug,
		JobSlug:           req.JobSlug,
		PromptID:          promptID,
		FirefliesRef:      req.FirefliesURL,
		AdditionalContext: req.AdditionalContext,
		UseQuil:           boolOrDefault(req.UseQuil, true),
		IncludeResume:     boolOrDefault(req.IncludeResume, true),
	})
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"html_summary":   res.SummaryHTML,
		"candidate_slug": req.CandidateSlug,
		"candidate_name": res.CandidateName,
		"job_name":       res.JobName,
		"sources_used":   res.Sources,
		"warnings":       res.Warnings,
	})
}

type pushRequest struct {
	CandidateSlug string `json:"candidate_slug"`
	HTMLSummary   string `json:"html_summary"`
}

func (s *Server) pushToRecruitCRM(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" || req.HTMLSummary == "" {
		writeError(w, http.StatusBadRequest, "missing candidate slug or HTML summary")
		return
	}
	if err := s.ats.PushSummary(r.Context(), req.CandidateSlug, req.HTMLSummary); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Summary pushed to RecruitCRM successfully",
	})
}

type noteRequest struct {
	CandidateSlug string `json:"candidate_slug"`
	JobSlug       string `json:"job_slug"`
	NoteText      string `json:"note_text"`
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" || req.NoteText == "" {
		writeError(w, http.StatusBadRequest, "missing candidate slug or note text")
		return
	}
	id, err := s.ats.CreateNote(r.Context(), req.CandidateSlug, req.JobSlug, req.NoteText)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note_id": id})
}

type stageMoveRequest struct {
	CandidateSlug string `json:"candidate_slug"`
	JobSlug       string `json:"job_slug"`
	StageID       int    `json:"stage_id"`
}

func (s *Server) moveStage(w http.ResponseWriter, r *http.Request) {
	var req stageMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CandidateSlug == "" || req.JobSlug == "" || req.StageID == 0 {
		writeError(w, http.StatusBadRequest, "missing candidate slug, job slug, or stage id")
		return
	}
	if err := s.ats.MoveStage(r.Context(), req.CandidateSlug, req.JobSlug, req.StageID); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type feedbackRequest struct {
	Rating        int    `json:"rating"`
	Comments      string `json:"comments"`
	PromptType    string `json:"prompt_type"`
	SummaryHTML   string `json:"generated_summary_html"`
	CandidateSlug string `json:"candidate_slug"`
	JobSlug       string `json:"job_slug"`
}

func (s *Server) logFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	id, err := s.feedback.AddFeedback(r.Context(), summary.Feedback{
		Rating:        req.Rating,
		Comments:      req.Comments,
		PromptType:    req.PromptType,
		SummaryHTML:   req.SummaryHTML,
		CandidateSlug: req.CandidateSlug,
		JobSlug:       req.JobSlug,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "feedback_id": id})
	s.logger.Info("feedback logged", zap.Int("rating", req.Rating), zap.String("candidate", req.CandidateSlug))
}

type gmailDraftRequest struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	To           []string `json:"to"`
	Subject      string   `json:"subject"`
	BodyHTML     string   `json:"body_html"`
	Attachment   *struct {
		Filename string `json:"filename"`
		MIMEType string `json:"mime_type"`
		Data     []byte `json:"data"`
	} `json:"attachment"`
}

func (s *Server) createGmailDraft(w http.ResponseWriter, r *http.Request) {
	var req gmailDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	draftReq := gmail.DraftRequest{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		To:           req.To,
		Subject:      req.Subject,
		BodyHTML:     req.BodyHTML,
	}
	if req.Attachment != nil {
		draftReq.Attachment = &gmail.Attachment{
			Filename: req.Attachment.Filename,
			MIMEType: req.Attachment.MIMEType,
			Data:     req.Attachment.Data,
		}
	}
	draft, err := s.gmail.CreateDraft(r.Context(), draftReq)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"draft_id":  draft.ID,
		"draft_url": draft.URL,
	})
}

func boolOrDefault(ptr *bool, def bool) bool {
	if ptr == nil {
		return def
	}
	return *ptr
}
