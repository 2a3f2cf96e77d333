// Package tasks relays webhook-triggered work to the summary worker endpoint
// through Cloud Tasks, with an in-process queue for development.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// CloudTasksOptions configures the Cloud Tasks provider.
type CloudTasksOptions struct {
	ProjectID           string
	Location            string
	Queue               string
	WorkerURL           string
	ServiceAccountEmail string
	Logger              *zap.Logger
}

// CloudTasksQueue enqueues HTTP tasks targeting the worker endpoint.
type CloudTasksQueue struct {
	client              *cloudtasks.Client
	queuePath           string
	workerURL           string
	serviceAccountEmail string
	logger              *zap.Logger
}

// NewCloudTasksQueue creates the Cloud Tasks provider.
func NewCloudTasksQueue(ctx context.Context, opts CloudTasksOptions) (*CloudTasksQueue, error) {
	if opts.ProjectID == "" || opts.Location == "" || opts.Queue == "" {
		return nil, fmt.Errorf("cloud tasks requires project, location, and queue")
	}
	if opts.WorkerURL == "" {
		return nil, fmt.Errorf("cloud tasks requires a worker URL")
	}
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create cloud tasks client: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudTasksQueue{
		client:              client,
		queuePath:           fmt.Sprintf("projects/%s/locations/%s/queues/%s", opts.ProjectID, opts.Location, opts.Queue),
		workerURL:           opts.WorkerURL,
		serviceAccountEmail: opts.ServiceAccountEmail,
		logger:              logger,
	}, nil
}

// Close releases the underlying gRPC connection.
func (q *CloudTasksQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return fmt.Errorf("close cloud tasks client: %w", err)
	}
	return nil
}

// EnqueueSummaryTask creates an HTTP task that POSTs the payload to the
// worker endpoint, optionally delayed. Returns the created task name.
func (q *CloudTasksQueue) EnqueueSummaryTask(ctx context.Context, task summary.Task) (string, error) {
	body, err := json.Marshal(taskBody(task))
	if err != nil {
		return "", fmt.Errorf("encode task body: %w", err)
	}

	httpReq := &cloudtaskspb.HttpRequest{
		Url:        q.workerURL,
		HttpMethod: cloudtaskspb.HttpMethod_POST,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
	if q.serviceAccountEmail != "" {
		httpReq.AuthorizationHeader = &cloudtaskspb.HttpRequest_OidcToken{
			OidcToken: &cloudtaskspb.OidcToken{ServiceAccountEmail: q.serviceAccountEmail},
		}
	}

	req := &cloudtaskspb.CreateTaskRequest{
		Parent: q.queuePath,
		Task: &cloudtaskspb.Task{
			MessageType: &cloudtaskspb.Task_HttpRequest{HttpRequest: httpReq},
		},
	}
	if task.Delay > 0 {
		req.Task.ScheduleTime = timestamppb.New(time.Now().Add(task.Delay))
	}

	created, err := q.client.CreateTask(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	q.logger.Info("summary task enqueued",
		zap.String("task", created.GetName()),
		zap.String("candidate", task.CandidateSlug),
		zap.String("job", task.JobSlug),
		zap.Duration("delay", task.Delay),
	)
	return created.GetName(), nil
}

func taskBody(task summary.Task) map[string]any {
	body := map[string]any{
		"candidate_slug": task.CandidateSlug,
		"job_slug":       task.JobSlug,
	}
	if task.WebhookPayload != nil {
		body["webhook_payload"] = task.WebhookPayload
	}
	return body
}
