// Package firestore persists service documents in Cloud Firestore.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Collection names.
const (
	promptsCollection  = "prompts"
	feedbackCollection = "feedback"
	runsCollection     = "candidate_summary_runs"
	configCollection   = "webhook_config"
	configDocID        = "default"
	bulkJobsCollection = "bulk_jobs"
)

// Store implements the store interfaces on a Firestore client.
type Store struct {
	client *firestore.Client
}

// New wraps a Firestore client.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ListPrompts returns prompts, optionally filtered by category.
func (s *Store) ListPrompts(ctx context.Context, category string) ([]summary.Prompt, error) {
	query := s.client.Collection(promptsCollection).Query
	if category != "" {
		query = query.Where("category", "==", category)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []summary.Prompt
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate prompts: %w", err)
		}
		var p summary.Prompt
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode prompt %s: %w", doc.Ref.ID, err)
		}
		p.ID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

// GetPrompt fetches a prompt document by its slug ID.
func (s *Store) GetPrompt(ctx context.Context, id string) (*summary.Prompt, error) {
	doc, err := s.client.Collection(promptsCollection).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
		}
		return nil, fmt.Errorf("get prompt %s: %w", id, err)
	}
	var p summary.Prompt
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode prompt %s: %w", id, err)
	}
	p.ID = doc.Ref.ID
	return &p, nil
}

// CreatePrompt writes a prompt document keyed by its slug.
func (s *Store) CreatePrompt(ctx context.Context, p summary.Prompt) error {
	if _, err := s.client.Collection(promptsCollection).Doc(p.ID).Create(ctx, p); err != nil {
		return fmt.Errorf("create prompt %s: %w", p.ID, err)
	}
	return nil
}

// UpdatePrompt merges allowed fields into an existing prompt document.
func (s *Store) UpdatePrompt(ctx context.Context, id string, fields map[string]any) error {
	ref := s.client.Collection(promptsCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if notFound(err) {
			return fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
		}
		return fmt.Errorf("get prompt %s: %w", id, err)
	}
	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("update prompt %s: %w", id, err)
	}
	return nil
}

// DeletePrompt removes a prompt document.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	ref := s.client.Collection(promptsCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if notFound(err) {
			return fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
		}
		return fmt.Errorf("get prompt %s: %w", id, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete prompt %s: %w", id, err)
	}
	return nil
}

// SetDefaultPrompt flags one prompt as its category's default and clears the
// flag on every other prompt in that category.
func (s *Store) SetDefaultPrompt(ctx context.Context, id string) error {
	target, err := s.GetPrompt(ctx, id)
	if err != nil {
		return err
	}

	iter := s.client.Collection(promptsCollection).
		Where("category", "==", target.Category).
		Where("is_default", "==", true).
		Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("iterate defaults: %w", err)
		}
		if doc.Ref.ID == id {
			continue
		}
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "is_default", Value: false}}); err != nil {
			return fmt.Errorf("clear default on %s: %w", doc.Ref.ID, err)
		}
	}

	ref := s.client.Collection(promptsCollection).Doc(id)
	if _, err := ref.Update(ctx, []firestore.Update{{Path: "is_default", Value: true}}); err != nil {
		return fmt.Errorf("set default on %s: %w", id, err)
	}
	return nil
}

// AddFeedback writes a feedback document and returns its generated ID.
func (s *Store) AddFeedback(ctx context.Context, fb summary.Feedback) (string, error) {
	ref := s.client.Collection(feedbackCollection).NewDoc()
	if _, err := ref.Create(ctx, fb); err != nil {
		return "", fmt.Errorf("create feedback: %w", err)
	}
	return ref.ID, nil
}

// AddRun writes a run document and returns its generated ID.
func (s *Store) AddRun(ctx context.Context, run summary.Run) (string, error) {
	ref := s.client.Collection(runsCollection).NewDoc()
	if _, err := ref.Create(ctx, run); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return ref.ID, nil
}

// ListRuns returns run documents newest first, honoring the filter.
func (s *Store) ListRuns(ctx context.Context, f summary.RunFilter) ([]summary.Run, error) {
	query := s.client.Collection(runsCollection).Query
	if f.CandidateSlug != "" {
		query = query.Where("candidate_slug", "==", f.CandidateSlug)
	}
	if f.JobSlug != "" {
		query = query.Where("job_slug", "==", f.JobSlug)
	}
	query = query.OrderBy("timestamp", firestore.Desc)
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()
	var out []summary.Run
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate runs: %w", err)
		}
		var r summary.Run
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", doc.Ref.ID, err)
		}
		r.ID = doc.Ref.ID
		out = append(out, r)
	}
	return out, nil
}

// WebhookConfig returns the config document merged over the defaults, so new
// fields pick up their default value on documents written by older versions.
func (s *Store) WebhookConfig(ctx context.Context) (summary.WebhookConfig, error) {
	cfg := summary.DefaultWebhookConfig()
	doc, err := s.client.Collection(configCollection).Doc(configDocID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return cfg, nil
		}
		return summary.WebhookConfig{}, fmt.Errorf("get webhook config: %w", err)
	}
	summary.ApplyWebhookConfigFields(&cfg, doc.Data())
	return cfg, nil
}

// UpdateWebhookConfig merge-sets fields into the config document.
func (s *Store) UpdateWebhookConfig(ctx context.Context, fields map[string]any) error {
	ref := s.client.Collection(configCollection).Doc(configDocID)
	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("update webhook config: %w", err)
	}
	return nil
}

// CreateBulkJob writes a bulk job document.
func (s *Store) CreateBulkJob(ctx context.Context, job summary.BulkJob) error {
	if _, err := s.client.Collection(bulkJobsCollection).Doc(job.ID).Create(ctx, job); err != nil {
		return fmt.Errorf("create bulk job %s: %w", job.ID, err)
	}
	return nil
}

// GetBulkJob fetches a bulk job document.
func (s *Store) GetBulkJob(ctx context.Context, id string) (summary.BulkJob, error) {
	doc, err := s.client.Collection(bulkJobsCollection).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return summary.BulkJob{}, fmt.Errorf("bulk job %s: %w", id, summary.ErrNotFound)
		}
		return summary.BulkJob{}, fmt.Errorf("get bulk job %s: %w", id, err)
	}
	var job summary.BulkJob
	if err := doc.DataTo(&job); err != nil {
		return summary.BulkJob{}, fmt.Errorf("decode bulk job %s: %w", id, err)
	}
	job.ID = doc.Ref.ID
	return job, nil
}

// UpdateBulkJob replaces a bulk job document.
func (s *Store) UpdateBulkJob(ctx context.Context, job summary.BulkJob) error {
	if _, err := s.client.Collection(bulkJobsCollection).Doc(job.ID).Set(ctx, job); err != nil {
		return fmt.Errorf("update bulk job %s: %w", job.ID, err)
	}
	return nil
}
