package summary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimInterviewID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "cm9abc123", TrimInterviewID("cm9abc123?utm_source=crm"))
	require.Equal(t, "cm9abc123", TrimInterviewID("  cm9abc123 "))
	require.Equal(t, "", TrimInterviewID(""))
}

func TestCandidateInterviewID(t *testing.T) {
	t.Parallel()

	c := Candidate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		CustomFields: []CustomField{
			{FieldName: "Nickname", Value: "Ada"},
			{FieldName: FieldAIInterviewID, Value: "iv_123?ref=email"},
		},
	}
	require.Equal(t, "iv_123", c.InterviewID())
	require.Equal(t, "Ada Lovelace", c.FullName())
	require.Equal(t, "", c.CustomFieldValue("Missing"))
}

func TestJobRecordAlpharunJobID(t *testing.T) {
	t.Parallel()

	j := JobRecord{CustomFields: []CustomField{
		{Label: FieldAIJobID, Value: "jo_456"},
	}}
	require.Equal(t, "jo_456", j.AlpharunJobID())

	empty := JobRecord{}
	require.Equal(t, "", empty.AlpharunJobID())
}

func TestResumeLink(t *testing.T) {
	t.Parallel()

	r := &Resume{URL: "https://files.example/a.pdf", FileLink: "https://signed.example/a.pdf"}
	require.Equal(t, "https://signed.example/a.pdf", r.Link())

	r.FileLink = ""
	require.Equal(t, "https://files.example/a.pdf", r.Link())

	var nilResume *Resume
	require.Equal(t, "", nilResume.Link())
}

func TestDefaultWebhookConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultWebhookConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, "summary-for-platform-v2", cfg.DefaultPromptID)
	require.Equal(t, "single", cfg.PromptCategory)
	require.True(t, cfg.UseQuil)
	require.False(t, cfg.UseFireflies)
	require.True(t, cfg.ProceedWithoutInterview)
	require.False(t, cfg.AutoPush)
	require.Equal(t, 5, cfg.MaxConcurrentTasks)
	require.Equal(t, 10, cfg.RateLimitPerMinute)
	require.Equal(t, 726195, cfg.TargetStageID)
}
