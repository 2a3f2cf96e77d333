package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func TestListPromptsDefaultsToSingleCategory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	status, body := f.doJSON(t, http.MethodGet, "/api/prompts", nil)
	require.Equal(t, http.StatusOK, status)

	prompts, ok := body["prompts"].([]any)
	require.True(t, ok)
	require.Len(t, prompts, 2)
	first, ok := prompts[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "single", first["category"])
}

func TestTestCandidate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/test-candidate", map[string]any{
		"candidate_slug": "cand-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Maya Chen", body["candidate_name"])
	require.Equal(t, true, body["has_resume"])
	require.Equal(t, "iv-42", body["interview_id"])

	status, _ = f.doJSON(t, http.MethodPost, "/api/test-candidate", map[string]any{
		"candidate_slug": "cand-nope",
	})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.doJSON(t, http.MethodPost, "/api/test-candidate", map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestTestJob(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/test-job", map[string]any{
		"job_slug": "job-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Platform Engineer", body["job_name"])
	require.Equal(t, "aj-7", body["alpharun_job_id"])

	status, _ = f.doJSON(t, http.MethodPost, "/api/test-job", map[string]any{
		"job_slug": "job-nope",
	})
	require.Equal(t, http.StatusNotFound, status)
}

func TestTestInterviewResolvesFromSlugs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/test-interview", map[string]any{
		"candidate_slug": "cand-1",
		"job_slug":       "job-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Maya Chen", body["contact_name"])

	// Direct IDs skip the ATS lookups.
	status, body = f.doJSON(t, http.MethodPost, "/api/test-interview", map[string]any{
		"alpharun_job_id": "aj-7",
		"interview_id":    "iv-42?utm_source=mail",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Maya Chen", body["contact_name"])
}

func TestTestInterviewUnlinked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()
	f.ats.Candidates["cand-2"] = &summary.Candidate{Slug: "cand-2", FirstName: "Ben", LastName: "Okafor"}

	status, body := f.doJSON(t, http.MethodPost, "/api/test-interview", map[string]any{
		"candidate_slug": "cand-2",
		"job_slug":       "job-1",
	})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "AI interview not linked", body["error"])
}

func TestTestFireflies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	const id = "01HX4Q2W9E7R5T8Y3A6S1D0F2G"
	f.transcripts.Transcripts[id] = &summary.Transcript{
		ID:    id,
		Title: "Final round",
		Sentences: []summary.TranscriptSentence{
			{SpeakerName: "Sam", Text: "Tell me about the migration."},
			{SpeakerName: "Maya", Text: "We moved to Kubernetes."},
		},
	}

	status, body := f.doJSON(t, http.MethodPost, "/api/test-fireflies", map[string]any{
		"transcript_url": "https://app.fireflies.ai/view/final-round::" + id,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, id, body["transcript_id"])
	require.Equal(t, "Final round", body["meeting_title"])
	require.Equal(t, float64(2), body["sentence_count"])

	status, _ = f.doJSON(t, http.MethodPost, "/api/test-fireflies", map[string]any{
		"transcript_url": "not a url",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestTestResume(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/test-resume", map[string]any{
		"candidate_slug": "cand-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "resume.txt", body["filename"])

	f.ats.Candidates["cand-2"] = &summary.Candidate{Slug: "cand-2", FirstName: "Ben", LastName: "Okafor"}
	status, body = f.doJSON(t, http.MethodPost, "/api/test-resume", map[string]any{
		"candidate_slug": "cand-2",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, "No resume on file for this candidate.", body["message"])
}

func TestTestQuil(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()
	f.ats.Notes["cand-1"] = []summary.Note{{
		ID: 7,
		Description: "Quil 5/12/2025: Platform Engineer Interview<br>" +
			"<b>----Summary----</b><p>Strong hire.</p><b>----Manual Notes----</b>",
	}}

	status, body := f.doJSON(t, http.MethodPost, "/api/test-quil", map[string]any{
		"candidate_slug": "cand-1",
		"job_slug":       "job-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(7), body["note_id"])
	require.Equal(t, "Platform Engineer Interview", body["title"])

	f.ats.Notes["cand-1"] = nil
	status, body = f.doJSON(t, http.MethodPost, "/api/test-quil", map[string]any{
		"candidate_slug": "cand-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, "No Quil interview notes found.", body["message"])
}

func TestGenerateSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/generate-summary", map[string]any{
		"candidate_slug": "cand-1",
		"job_slug":       "job-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "<h4>Summary</h4>", body["html_summary"])
	require.Equal(t, "Maya Chen", body["candidate_name"])
	require.Equal(t, "Platform Engineer", body["job_name"])

	sources, ok := body["sources_used"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, sources["anna_ai"])
	require.Equal(t, true, sources["resume"])

	status, _ = f.doJSON(t, http.MethodPost, "/api/generate-summary", map[string]any{
		"candidate_slug": "cand-nope",
		"job_slug":       "job-1",
	})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.doJSON(t, http.MethodPost, "/api/generate-summary", map[string]any{
		"candidate_slug": "cand-1",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestPushNoteAndStageActions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, _ := f.doJSON(t, http.MethodPost, "/api/push-to-recruitcrm", map[string]any{
		"candidate_slug": "cand-1",
		"html_summary":   "<h4>Summary</h4>",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "<h4>Summary</h4>", f.ats.PushedSummaries["cand-1"])

	status, body := f.doJSON(t, http.MethodPost, "/api/create-note", map[string]any{
		"candidate_slug": "cand-1",
		"job_slug":       "job-1",
		"note_text":      "Shortlisted after review.",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), body["note_id"])
	require.Equal(t, []string{"Shortlisted after review."}, f.ats.CreatedNotes)

	status, _ = f.doJSON(t, http.MethodPost, "/api/move-stage", map[string]any{
		"candidate_slug": "cand-1",
		"job_slug":       "job-1",
		"stage_id":       726195,
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, f.ats.StageMoves, 1)
	require.Equal(t, 726195, f.ats.StageMoves[0].StageID)

	status, _ = f.doJSON(t, http.MethodPost, "/api/move-stage", map[string]any{
		"candidate_slug": "cand-1",
		"job_slug":       "job-1",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestLogFeedback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	status, body := f.doJSON(t, http.MethodPost, "/api/log-feedback", map[string]any{
		"rating":         5,
		"comments":       "Spot on.",
		"candidate_slug": "cand-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["feedback_id"])

	status, _ = f.doJSON(t, http.MethodPost, "/api/log-feedback", map[string]any{
		"rating": 0,
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = f.doJSON(t, http.MethodPost, "/api/log-feedback", map[string]any{
		"rating": 6,
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCreateGmailDraftValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// No tokens at all is rejected before any Gmail call is made.
	status, body := f.doJSON(t, http.MethodPost, "/api/create-gmail-draft", map[string]any{
		"to":        []string{"client@example.com"},
		"subject":   "Shortlist",
		"body_html": "<p>Hi</p>",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body["error"], "access or refresh token")

	status, body = f.doJSON(t, http.MethodPost, "/api/create-gmail-draft", map[string]any{
		"access_token": "ya29.token",
		"subject":      "Shortlist",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body["error"], "recipient")
}
