package prompts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func TestBuiltinPromptsComplete(t *testing.T) {
	t.Parallel()

	builtins := Builtin()
	require.Len(t, builtins, 3)
	for _, p := range builtins {
		require.NotEmpty(t, p.ID)
		require.NotEmpty(t, p.SystemPrompt)
		require.NotEmpty(t, p.UserPrompt)
		require.True(t, p.Enabled)
		switch p.Category {
		case "single":
			require.NotEmpty(t, p.Template)
			require.Contains(t, p.UserPrompt, "{candidate_data}")
			require.Contains(t, p.UserPrompt, "{fireflies_section}")
		case "multiple":
			require.Contains(t, p.UserPrompt, "{processed_summaries}")
			require.Contains(t, p.SystemPrompt, "[HERE_LINK]")
		default:
			t.Fatalf("unexpected category %q", p.Category)
		}
	}
}

type fakePromptStore struct {
	prompts map[string]summary.Prompt
	listErr error
}

func (f *fakePromptStore) ListPrompts(_ context.Context, category string) ([]summary.Prompt, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []summary.Prompt
	for _, p := range f.prompts {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePromptStore) GetPrompt(_ context.Context, id string) (*summary.Prompt, error) {
	p, ok := f.prompts[id]
	if !ok {
		return nil, summary.ErrNotFound
	}
	return &p, nil
}

func (f *fakePromptStore) CreatePrompt(_ context.Context, p summary.Prompt) error {
	f.prompts[p.ID] = p
	return nil
}

func (f *fakePromptStore) UpdatePrompt(context.Context, string, map[string]any) error {
	return nil
}

func (f *fakePromptStore) DeletePrompt(context.Context, string) error { return nil }

func (f *fakePromptStore) SetDefaultPrompt(context.Context, string) error { return nil }

func TestRegistryGetPrefersStore(t *testing.T) {
	t.Parallel()

	store := &fakePromptStore{prompts: map[string]summary.Prompt{
		"summary-for-platform-v2": {
			ID: "summary-for-platform-v2", Category: "single", Enabled: true,
			SystemPrompt: "stored system", UserPrompt: "{candidate_data}",
		},
	}}
	reg := NewRegistry(store, nil)

	p, err := reg.Get(context.Background(), "summary-for-platform-v2")
	require.NoError(t, err)
	require.Equal(t, "stored system", p.SystemPrompt)
}

func TestRegistryGetFallsBackToBuiltin(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&fakePromptStore{prompts: map[string]summary.Prompt{}}, nil)
	p, err := reg.Get(context.Background(), "recruitment.detailed")
	require.NoError(t, err)
	require.Contains(t, p.SystemPrompt, "decision-ready")
}

func TestRegistryGetUnknown(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, nil)
	_, err := reg.Get(context.Background(), "nope")
	require.Error(t, err)
	require.True(t, errors.Is(err, summary.ErrNotFound))
}

func TestRegistryListMergesAndFilters(t *testing.T) {
	t.Parallel()

	store := &fakePromptStore{prompts: map[string]summary.Prompt{
		"custom-email": {ID: "custom-email", Category: "multiple", Enabled: true, SortOrder: 1},
		"disabled-one": {ID: "disabled-one", Category: "single", Enabled: false},
	}}
	reg := NewRegistry(store, nil)

	single, err := reg.List(context.Background(), "single")
	require.NoError(t, err)
	ids := make([]string, 0, len(single))
	for _, p := range single {
		ids = append(ids, p.ID)
	}
	require.Contains(t, ids, "recruitment.detailed")
	require.NotContains(t, ids, "disabled-one")
	require.NotContains(t, ids, "custom-email")

	multiple, err := reg.List(context.Background(), "multiple")
	require.NoError(t, err)
	require.Len(t, multiple, 2)
	require.Equal(t, "custom-email", multiple[0].ID)
	require.Equal(t, "client-email.detailed", multiple[1].ID)
}

func TestRegistryDefault(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil, nil)
	p, err := reg.Default(context.Background(), "single")
	require.NoError(t, err)
	require.Equal(t, "recruitment.detailed", p.ID)
}

func TestBuildSinglePromptWithTranscript(t *testing.T) {
	t.Parallel()

	p := &summary.Prompt{
		SystemPrompt: "System rules.",
		Template:     "<p>tpl</p>",
		UserPrompt:   "C: {candidate_data}\nJ: {job_data}\nI: {interview_data}\n{fireflies_section}\nX: {additional_context}",
	}
	got := BuildSinglePrompt(p, SingleData{
		CandidateData:     `{"name":"Grace"}`,
		JobData:           `{"title":"Engineer"}`,
		InterviewData:     "Not provided.",
		Transcript:        &summary.TranscriptText{Title: "Screen", Content: "Sam: hi\nGrace: hello"},
		AdditionalContext: "prefers remote",
	})

	require.True(t, strings.HasPrefix(got, "System rules."))
	require.Contains(t, got, "**HTML template (paste into ATS)**\n```html\n<p>tpl</p>\n```")
	require.Contains(t, got, "RECRUITER-LED INTERVIEW TRANSCRIPT")
	require.Contains(t, got, "Title: Screen")
	require.Contains(t, got, "Sam: hi")
	require.Contains(t, got, "prefers remote")
	require.NotContains(t, got, "{candidate_data}")
}

func TestBuildSinglePromptWithoutTranscript(t *testing.T) {
	t.Parallel()

	p := &summary.Prompt{SystemPrompt: "S", UserPrompt: "{fireflies_section}"}
	got := BuildSinglePrompt(p, SingleData{})
	require.Contains(t, got, "**RECRUITER-LED INTERVIEW TRANSCRIPT:**\nNot provided.")
}

func TestBuildMultiPrompt(t *testing.T) {
	t.Parallel()

	p := &summary.Prompt{
		SystemPrompt: "Email rules.",
		UserPrompt:   "Dear {client_name}, about {job_title}: {processed_summaries} preferred {preferred_candidate}",
	}
	got := BuildMultiPrompt(p, MultiData{
		ClientName:         "Acme",
		JobTitle:           "Platform Engineer",
		ProcessedSummaries: "<p>summary one</p>",
		PreferredCandidate: "Grace Hopper",
	})
	require.Contains(t, got, "Dear Acme")
	require.Contains(t, got, "preferred Grace Hopper")
}

func TestReplaceHereLink(t *testing.T) {
	t.Parallel()

	html := `<p>Review the shortlist [HERE_LINK].</p>`
	got := ReplaceHereLink(html, "https://platform.example/jobs/123")
	require.Equal(t, `<p>Review the shortlist <a href="https://platform.example/jobs/123">here</a>.</p>`, got)

	require.Equal(t, html, ReplaceHereLink(html, ""))
}

func TestFormatData(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Not provided.", FormatData(nil))
	got := FormatData(map[string]any{"a": 1})
	require.Contains(t, got, `"a": 1`)
}
