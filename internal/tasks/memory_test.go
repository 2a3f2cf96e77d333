package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func TestMemoryQueueRecordsTasks(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue()
	name, err := q.EnqueueSummaryTask(context.Background(), summary.Task{
		CandidateSlug: "cand-1",
		JobSlug:       "job-1",
		Delay:         30 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "memory/tasks/1", name)

	tasks := q.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "cand-1", tasks[0].CandidateSlug)
	require.Equal(t, 30*time.Second, tasks[0].Delay)
}

func TestTaskBodyOmitsNilPayload(t *testing.T) {
	t.Parallel()

	body := taskBody(summary.Task{CandidateSlug: "c", JobSlug: "j"})
	require.NotContains(t, body, "webhook_payload")

	body = taskBody(summary.Task{CandidateSlug: "c", JobSlug: "j", WebhookPayload: map[string]any{"k": "v"}})
	require.Contains(t, body, "webhook_payload")
}
