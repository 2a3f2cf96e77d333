package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/prompts"
	"github.com/outstaffer/candidate-summary-api/internal/quil"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
	"github.com/outstaffer/candidate-summary-api/internal/summary/summarytest"
)

const testTranscriptID = "01HX4Q2W9E7R5T8Y3A6S1D0F2G"

func newTestPipeline(ats *summarytest.FakeATS, gen *summarytest.FakeGenerator) (*Pipeline, *summarytest.FakeInterviews, *summarytest.FakeTranscripts) {
	interviews := &summarytest.FakeInterviews{Interviews: map[string]*summary.Interview{}}
	transcripts := &summarytest.FakeTranscripts{Transcripts: map[string]*summary.Transcript{}}
	p := New(
		ats,
		interviews,
		transcripts,
		quil.NewSelector(gen, zap.NewNop()),
		gen,
		prompts.NewRegistry(nil, zap.NewNop()),
		zap.NewNop(),
	)
	return p, interviews, transcripts
}

func fixtureCandidate() *summary.Candidate {
	return &summary.Candidate{
		Slug:      "cand-1",
		FirstName: "Maya",
		LastName:  "Chen",
		Resume:    &summary.Resume{Filename: "resume.txt", FileLink: "https://files.example/resume.txt"},
		CustomFields: []summary.CustomField{
			{FieldName: summary.FieldAIInterviewID, Value: "iv-42?utm_source=mail"},
		},
		Raw: map[string]any{"slug": "cand-1", "first_name": "Maya", "last_name": "Chen"},
	}
}

func fixtureJob() *summary.JobRecord {
	return &summary.JobRecord{
		Slug: "job-1",
		Name: "Platform Engineer",
		CustomFields: []summary.CustomField{
			{FieldName: summary.FieldAIJobID, Value: "aj-7"},
		},
		Raw: map[string]any{"slug": "job-1", "name": "Platform Engineer"},
	}
}

func TestGenerateSummaryAllSources(t *testing.T) {
	t.Parallel()

	ats := summarytest.NewFakeATS()
	ats.Candidates["cand-1"] = fixtureCandidate()
	ats.Jobs["job-1"] = fixtureJob()
	ats.Files["https://files.example/resume.txt"] = []byte("Ten years of platform work.")
	ats.Notes["cand-1"] = []summary.Note{{
		ID: 9,
		Description: "Quil 5/12/2025: Platform Engineer Interview<br>" +
			"<b>----Summary----</b><p>Strong on Kubernetes.</p><b>----Manual Notes----</b>",
	}}

	gen := &summarytest.FakeGenerator{HTML: "<h4>Summary</h4>"}
	p, interviews, transcripts := newTestPipeline(ats, gen)
	interviews.Interviews["aj-7/iv-42"] = &summary.Interview{
		ContactFirstName: "Maya",
		Raw:              map[string]any{"overall_score": 8},
	}
	transcripts.Transcripts[testTranscriptID] = &summary.Transcript{
		ID:    testTranscriptID,
		Title: "Final round",
		Sentences: []summary.TranscriptSentence{
			{SpeakerName: "Sam", Text: "Tell me about the migration."},
		},
	}

	res, err := p.GenerateSummary(t.Context(), Request{
		CandidateSlug: "cand-1",
		JobSlug:       "job-1",
		PromptID:      "recruitment.detailed",
		FirefliesRef:  testTranscriptID,
		UseQuil:       true,
		IncludeResume: true,
	})
	require.NoError(t, err)
	require.Equal(t, "<h4>Summary</h4>", res.SummaryHTML)
	require.Equal(t, "Maya Chen", res.CandidateName)
	require.Equal(t, "Platform Engineer", res.JobName)
	require.Empty(t, res.Warnings)
	require.True(t, res.Sources.Resume)
	require.True(t, res.Sources.AnnaAI)
	require.True(t, res.Sources.Quil)
	require.True(t, res.Sources.Fireflies)

	prompt := gen.LastPrompt()
	require.Contains(t, prompt, "Maya")
	require.Contains(t, prompt, "Platform Engineer")
	require.Contains(t, prompt, "RECRUITER-LED INTERVIEW TRANSCRIPT")
	require.Contains(t, prompt, "Sam: Tell me about the migration.")
	require.Contains(t, prompt, "Strong on Kubernetes.")
	require.Contains(t, prompt, "overall_score")

	require.Len(t, gen.Attachments, 1)
	require.Len(t, gen.Attachments[0], 1)
	require.Equal(t, "resume.txt", gen.Attachments[0][0].Filename)
}

func TestGenerateSummaryMissingCandidate(t *testing.T) {
	t.Parallel()

	ats := summarytest.NewFakeATS()
	ats.Jobs["job-1"] = fixtureJob()
	gen := &summarytest.FakeGenerator{HTML: "<p>x</p>"}
	p, _, _ := newTestPipeline(ats, gen)

	_, err := p.GenerateSummary(t.Context(), Request{
		CandidateSlug: "missing",
		JobSlug:       "job-1",
		PromptID:      "recruitment.detailed",
	})
	require.ErrorIs(t, err, summary.ErrNotFound)
	require.Empty(t, gen.Prompts)
}

func TestGenerateSummaryOptionalSourcesDegrade(t *testing.T) {
	t.Parallel()

	ats := summarytest.NewFakeATS()
	candidate := fixtureCandidate()
	candidate.CustomFields = nil
	candidate.Resume = nil
	ats.Candidates["cand-1"] = candidate
	ats.Jobs["job-1"] = fixtureJob()

	gen := &summarytest.FakeGenerator{HTML: "<p>still generated</p>"}
	p, _, _ := newTestPipeline(ats, gen)

	res, err := p.GenerateSummary(t.Context(), Request{
		CandidateSlug: "cand-1",
		JobSlug:       "job-1",
		PromptID:      "recruitment.detailed",
		FirefliesRef:  "not-a-transcript",
		UseQuil:       true,
		IncludeResume: true,
	})
	require.NoError(t, err)
	require.Equal(t, "<p>still generated</p>", res.SummaryHTML)
	require.Len(t, res.Warnings, 4)
	require.False(t, res.Sources.Resume)
	require.False(t, res.Sources.AnnaAI)
	require.False(t, res.Sources.Quil)
	require.False(t, res.Sources.Fireflies)
	require.Contains(t, gen.LastPrompt(), "Not provided.")
}

func TestGenerateSummaryMergesAssociatedFields(t *testing.T) {
	t.Parallel()

	ats := summarytest.NewFakeATS()
	candidate := fixtureCandidate()
	candidate.CustomFields = []summary.CustomField{
		{FieldName: "Expected Salary", Value: "stale"},
	}
	ats.Candidates["cand-1"] = candidate
	ats.Jobs["job-1"] = fixtureJob()
	ats.Fields["cand-1/job-1"] = []summary.CustomField{
		{FieldName: "Expected Salary", Value: "95000"},
		{FieldName: "Notice Period", Value: "4 weeks"},
	}

	gen := &summarytest.FakeGenerator{HTML: "<p>ok</p>"}
	p, _, _ := newTestPipeline(ats, gen)

	_, err := p.GenerateSummary(t.Context(), Request{
		CandidateSlug: "cand-1",
		JobSlug:       "job-1",
		PromptID:      "recruitment.detailed",
	})
	require.NoError(t, err)

	prompt := gen.LastPrompt()
	require.Contains(t, prompt, "95000")
	require.Contains(t, prompt, "Notice Period")
	require.NotContains(t, prompt, "stale")
}

func TestGenerateSummaryUnknownPrompt(t *testing.T) {
	t.Parallel()

	ats := summarytest.NewFakeATS()
	ats.Candidates["cand-1"] = fixtureCandidate()
	ats.Jobs["job-1"] = fixtureJob()
	p, _, _ := newTestPipeline(ats, &summarytest.FakeGenerator{})

	_, err := p.GenerateSummary(t.Context(), Request{
		CandidateSlug: "cand-1",
		JobSlug:       "job-1",
		PromptID:      "no-such-prompt",
	})
	require.ErrorIs(t, err, summary.ErrNotFound)
}

func TestGenerateClientEmail(t *testing.T) {
	t.Parallel()

	gen := &summarytest.FakeGenerator{
		HTML: `<p>Review the candidates [HERE_LINK].</p>`,
	}
	p, _, _ := newTestPipeline(summarytest.NewFakeATS(), gen)

	html, err := p.GenerateClientEmail(t.Context(), EmailRequest{
		PromptID:   "client-email.detailed",
		ClientName: "Acme",
		JobTitle:   "Platform Engineer",
		JobURL:     "https://jobs.example/platform-engineer",
		ProcessedSummaries: map[string]string{
			"Maya Chen":  "<h4>Maya</h4>",
			"Ben Okafor": "<h4>Ben</h4>",
		},
	})
	require.NoError(t, err)
	require.Equal(t,
		`<p>Review the candidates <a href="https://jobs.example/platform-engineer">here</a>.</p>`,
		html,
	)

	prompt := gen.LastPrompt()
	require.Contains(t, prompt, "### Ben Okafor")
	require.Contains(t, prompt, "### Maya Chen")
	require.Contains(t, prompt, "Ben Okafor, Maya Chen")
}

func TestGenerateClientEmailRequiresPrompt(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPipeline(summarytest.NewFakeATS(), &summarytest.FakeGenerator{})
	_, err := p.GenerateClientEmail(t.Context(), EmailRequest{})
	require.Error(t, err)
}
