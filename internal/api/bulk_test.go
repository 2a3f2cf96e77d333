package api

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func (f *fixture) seedPipelineStages() {
	f.ats.Stages = []summary.Stage{
		{StatusID: 1, Label: "Sourced"},
		{StatusID: 2, Label: "Screening"},
		{StatusID: 3, Label: "AI Interview"},
	}
	f.ats.Assigned["job-1"] = []summary.AssignedCandidate{
		{Candidate: summary.Candidate{Slug: "cand-1", FirstName: "Maya", LastName: "Chen"}, StatusID: 3},
		{Candidate: summary.Candidate{Slug: "cand-2", FirstName: "Ben", LastName: "Okafor"}, StatusID: 3},
		{Candidate: summary.Candidate{Slug: "cand-3", FirstName: "Ana", LastName: "Silva"}, StatusID: 1},
	}
}

// getList fetches a path and decodes a JSON array response.
func (f *fixture) getList(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

func TestJobStagesWithCounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()
	f.seedPipelineStages()

	var stages []stageWithCount
	status := f.getList(t, "/api/job-stages-with-counts/job-1", &stages)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []stageWithCount{
		{StatusID: 1, Label: "Sourced", CandidateCount: 1},
		{StatusID: 2, Label: "Screening", CandidateCount: 0},
		{StatusID: 3, Label: "AI Interview", CandidateCount: 2},
	}, stages)
}

func TestCandidatesInStage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()
	f.seedPipelineStages()

	var candidates []stageCandidate
	status := f.getList(t, "/api/candidates-in-stage/job-1/3", &candidates)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []stageCandidate{
		{Slug: "cand-1", Name: "Maya Chen"},
		{Slug: "cand-2", Name: "Ben Okafor"},
	}, candidates)

	status = f.getList(t, "/api/candidates-in-stage/job-1/nope", &candidates)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestBulkProcessJobFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/bulk-process-job", map[string]any{
		"job_url":                 "https://app.recruitcrm.io/job/123/job-1",
		"single_candidate_prompt": "recruitment.detailed",
		"candidate_slugs":         []string{"cand-1"},
	})
	require.Equal(t, http.StatusAccepted, status)
	require.Equal(t, "Job started", body["message"])
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)

	var job map[string]any
	require.Eventually(t, func() bool {
		status, job = f.doJSON(t, http.MethodGet, "/api/bulk-job-status/"+jobID, nil)
		return status == http.StatusOK && job["status"] == "complete"
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, float64(1), job["processed_count"])

	status, body = f.doJSON(t, http.MethodPost, "/api/generate-bulk-email", map[string]any{
		"job_id":                 jobID,
		"multi_candidate_prompt": "client-email.detailed",
		"client_name":            "Acme",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["email_html"])
}

func TestBulkProcessJobValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	status, _ := f.doJSON(t, http.MethodPost, "/api/bulk-process-job", map[string]any{
		"single_candidate_prompt": "recruitment.detailed",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = f.doJSON(t, http.MethodGet, "/api/bulk-job-status/bulk-nope", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.doJSON(t, http.MethodPost, "/api/generate-bulk-email", map[string]any{
		"job_id":                 "bulk-nope",
		"multi_candidate_prompt": "client-email.detailed",
	})
	require.Equal(t, http.StatusNotFound, status)
}

func TestProcessCuratedCandidates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/process-curated-candidates", map[string]any{
		"job_slug":           "job-1",
		"candidate_slugs":    []string{"cand-1", "cand-gone"},
		"single_prompt_type": "recruitment.detailed",
		"generate_summaries": true,
		"client_name":        "Acme",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])

	summaries, ok := body["summaries"].([]any)
	require.True(t, ok)
	require.Len(t, summaries, 1)
	entry := summaries[0].(map[string]any)
	require.Equal(t, "Maya Chen", entry["name"])
	require.Equal(t, "cand-1", entry["slug"])
	require.NotEmpty(t, entry["html"])

	failures, ok := body["failures"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, failures, "cand-gone")

	// generate_email defaults to true
	require.NotEmpty(t, body["email_html"])
}

func TestProcessCuratedCandidatesAutoPush(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/process-curated-candidates", map[string]any{
		"job_slug":           "job-1",
		"candidate_slugs":    []string{"cand-1"},
		"single_prompt_type": "recruitment.detailed",
		"generate_summaries": true,
		"generate_email":     false,
		"auto_push":          true,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.NotContains(t, body, "email_html")
	require.Equal(t, "<h4>Summary</h4>", f.ats.PushedSummaries["cand-1"])
}

func TestProcessCuratedCandidatesValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()

	status, body := f.doJSON(t, http.MethodPost, "/api/process-curated-candidates", map[string]any{
		"job_slug":           "job-1",
		"candidate_slugs":    []string{"cand-1"},
		"generate_summaries": false,
		"generate_email":     false,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "No action requested.", body["error"])

	status, _ = f.doJSON(t, http.MethodPost, "/api/process-curated-candidates", map[string]any{
		"job_slug": "job-1",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = f.doJSON(t, http.MethodPost, "/api/process-curated-candidates", map[string]any{
		"job_slug":        "job-gone",
		"candidate_slugs": []string{"cand-1"},
	})
	require.Equal(t, http.StatusNotFound, status)
}

func TestGenerateMultipleCandidates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed()
	f.ats.Candidates["cand-2"] = &summary.Candidate{Slug: "cand-2", FirstName: "Ben", LastName: "Okafor"}

	status, body := f.doJSON(t, http.MethodPost, "/api/generate-multiple-candidates", map[string]any{
		"job_slug":        "job-1",
		"candidate_slugs": []string{"cand-1", "cand-2", "cand-gone"},
		"client_name":     "Acme",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["generated_content"])

	prompt := f.gen.LastPrompt()
	require.Contains(t, prompt, "**CANDIDATE 1: Maya Chen**")
	require.Contains(t, prompt, "**CANDIDATE 2: Ben Okafor**")
	require.Contains(t, prompt, "Platform Engineer")

	status, _ = f.doJSON(t, http.MethodPost, "/api/generate-multiple-candidates", map[string]any{
		"job_slug":        "job-1",
		"candidate_slugs": []string{"cand-gone"},
	})
	require.Equal(t, http.StatusBadRequest, status)
}
