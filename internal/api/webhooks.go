package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/metrics"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
	"github.com/outstaffer/candidate-summary-api/internal/worker"
)

type webhookPayload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// recruitcrmWebhook relays stage-3 transitions to the task queue. It always
// answers 200 so RecruitCRM never retries or disables the webhook; anything
// that goes wrong, malformed bodies included, is logged and counted instead.
func (s *Server) recruitcrmWebhook(w http.ResponseWriter, r *http.Request) {
	accepted := map[string]string{"status": "accepted"}

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.ObserveWebhookEvent("malformed")
		s.logger.Warn("webhook body malformed", zap.Error(err))
		writeJSON(w, http.StatusOK, accepted)
		return
	}
	candidateSlug, _ := payload.Data["candidate_slug"].(string)
	jobSlug, _ := payload.Data["job_slug"].(string)

	s.logger.Info("webhook received",
		zap.String("event", payload.Event),
		zap.String("candidate", candidateSlug),
		zap.String("job", jobSlug),
	)

	if candidateSlug == "" || jobSlug == "" {
		metrics.ObserveWebhookEvent("missing_slugs")
		writeJSON(w, http.StatusOK, accepted)
		return
	}
	if !isStageThreeEvent(payload.Event, payload.Data) {
		metrics.ObserveWebhookEvent("skipped")
		writeJSON(w, http.StatusOK, accepted)
		return
	}

	cfg, err := s.configStore.WebhookConfig(r.Context())
	if err != nil {
		s.logger.Warn("webhook config unavailable, using defaults", zap.Error(err))
		cfg = summary.DefaultWebhookConfig()
	}
	if !cfg.Enabled {
		metrics.ObserveWebhookEvent("disabled")
		writeJSON(w, http.StatusOK, accepted)
		return
	}

	task := summary.Task{
		CandidateSlug:  candidateSlug,
		JobSlug:        jobSlug,
		WebhookPayload: payload.Data,
	}
	// A configured delay defers the whole run so deferred post-actions
	// (summary push, stage move) land after it.
	if cfg.AutoPushDelaySeconds > 0 && (cfg.AutoPush || cfg.MoveToNextStage) {
		task.Delay = time.Duration(cfg.AutoPushDelaySeconds) * time.Second
	}

	taskID, err := s.queue.EnqueueSummaryTask(r.Context(), task)
	if err != nil {
		metrics.ObserveWebhookEvent("enqueue_failed")
		s.logger.Error("task enqueue failed",
			zap.String("candidate", candidateSlug),
			zap.String("job", jobSlug),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, accepted)
		return
	}

	metrics.ObserveWebhookEvent("enqueued")
	s.logger.Info("summary task enqueued",
		zap.String("task_id", taskID),
		zap.String("candidate", candidateSlug),
		zap.String("job", jobSlug),
	)
	writeJSON(w, http.StatusOK, accepted)
}

type summaryTaskPayload struct {
	CandidateSlug  string         `json:"candidate_slug"`
	JobSlug        string         `json:"job_slug"`
	WebhookPayload map[string]any `json:"webhook_payload"`
}

// summaryTask is the Cloud Tasks delivery target. A 400 marks the task
// permanently failed; a 500 asks the queue to retry.
func (s *Server) summaryTask(w http.ResponseWriter, r *http.Request) {
	var payload summaryTaskPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.CandidateSlug == "" || payload.JobSlug == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	retry, _ := strconv.Atoi(r.Header.Get("X-CloudTasks-TaskRetryCount"))
	job := worker.Job{
		CandidateSlug: payload.CandidateSlug,
		JobSlug:       payload.JobSlug,
		TriggeredBy:   triggeredBy(payload.WebhookPayload),
		Metadata: summary.WorkerMetadata{
			CloudTaskID:  r.Header.Get("X-CloudTasks-TaskName"),
			RetryAttempt: retry,
		},
	}

	run, err := s.worker.Process(r.Context(), job)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"run_id": run.ID,
		})
	case errors.Is(err, worker.ErrDisabled):
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "skipped",
			"message": err.Error(),
		})
	case errors.Is(err, summary.ErrNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// triggeredBy extracts the acting RecruitCRM user from a webhook payload.
func triggeredBy(data map[string]any) *summary.TriggeredBy {
	raw, ok := data["updated_by"].(map[string]any)
	if !ok {
		return nil
	}
	email, _ := raw["email"].(string)
	name, _ := raw["name"].(string)
	if email == "" && name == "" {
		return nil
	}
	return &summary.TriggeredBy{Email: email, Name: name}
}

// isStageThreeEvent reports whether the webhook marks a candidate reaching
// stage 3 of the hiring pipeline. RecruitCRM webhook shapes vary, so the
// stage may arrive as an ID, a nested object, a name, or only in the event
// string.
func isStageThreeEvent(event string, data map[string]any) bool {
	ids := []any{data["stage_id"], data["pipeline_stage_id"]}
	var names []string
	appendName := func(v any) {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	appendName(data["stage_name"])
	appendName(data["stage_label"])

	switch stage := data["stage"].(type) {
	case map[string]any:
		ids = append(ids, stage["id"], stage["stage_id"])
		appendName(stage["name"])
		appendName(stage["label"])
	case string:
		names = append(names, stage)
	}

	for _, id := range ids {
		if stageNumber(id) == 3 {
			return true
		}
	}
	for _, name := range names {
		normalized := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(name)))
		if normalized == "stage3" {
			return true
		}
	}
	lower := strings.ToLower(event)
	return strings.Contains(lower, "stage") && strings.Contains(event, "3")
}

// stageNumber coerces the many shapes stage IDs arrive in; 0 means no match.
func stageNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}
