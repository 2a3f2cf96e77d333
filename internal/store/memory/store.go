// Package memory provides in-memory store implementations for development
// and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Store implements every store interface over process-local maps.
type Store struct {
	mu       sync.RWMutex
	prompts  map[string]summary.Prompt
	feedback []summary.Feedback
	runs     []summary.Run
	config   *summary.WebhookConfig
	bulkJobs map[string]summary.BulkJob
	seq      int
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		prompts:  make(map[string]summary.Prompt),
		bulkJobs: make(map[string]summary.BulkJob),
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// ListPrompts returns prompts, optionally filtered by category.
func (s *Store) ListPrompts(_ context.Context, category string) ([]summary.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]summary.Prompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetPrompt fetches a prompt by ID.
func (s *Store) GetPrompt(_ context.Context, id string) (*summary.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
	}
	return &p, nil
}

// CreatePrompt stores a prompt under its ID.
func (s *Store) CreatePrompt(_ context.Context, p summary.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.prompts[p.ID]; exists {
		return fmt.Errorf("prompt %s already exists", p.ID)
	}
	s.prompts[p.ID] = p
	return nil
}

// UpdatePrompt merges allowed fields into an existing prompt.
func (s *Store) UpdatePrompt(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	if !ok {
		return fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
	}
	summary.ApplyPromptFields(&p, fields)
	s.prompts[id] = p
	return nil
}

// DeletePrompt removes a prompt.
func (s *Store) DeletePrompt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[id]; !ok {
		return fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
	}
	delete(s.prompts, id)
	return nil
}

// SetDefaultPrompt marks one prompt as its category's default and clears the
// flag on the rest of the category.
func (s *Store) SetDefaultPrompt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.prompts[id]
	if !ok {
		return fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
	}
	for key, p := range s.prompts {
		if p.Category == target.Category && p.IsDefault && key != id {
			p.IsDefault = false
			s.prompts[key] = p
		}
	}
	target.IsDefault = true
	s.prompts[id] = target
	return nil
}

// AddFeedback appends a feedback record.
func (s *Store) AddFeedback(_ context.Context, fb summary.Feedback) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, fb)
	return s.nextID("feedback"), nil
}

// Feedback returns a copy of all feedback, oldest first.
func (s *Store) Feedback() []summary.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]summary.Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// AddRun appends a run record and returns its ID.
func (s *Store) AddRun(_ context.Context, run summary.Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = s.nextID("run")
	s.runs = append(s.runs, run)
	return run.ID, nil
}

// ListRuns returns run records newest first, honoring the filter.
func (s *Store) ListRuns(_ context.Context, f summary.RunFilter) ([]summary.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]summary.Run, 0, len(s.runs))
	for _, r := range s.runs {
		if f.CandidateSlug != "" && r.CandidateSlug != f.CandidateSlug {
			continue
		}
		if f.JobSlug != "" && r.JobSlug != f.JobSlug {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// WebhookConfig returns the stored config, or the defaults when unset.
func (s *Store) WebhookConfig(_ context.Context) (summary.WebhookConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return summary.DefaultWebhookConfig(), nil
	}
	return *s.config, nil
}

// UpdateWebhookConfig merges fields into the config document.
func (s *Store) UpdateWebhookConfig(_ context.Context, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := summary.DefaultWebhookConfig()
	if s.config != nil {
		cfg = *s.config
	}
	summary.ApplyWebhookConfigFields(&cfg, fields)
	s.config = &cfg
	return nil
}

// CreateBulkJob stores a new bulk job document.
func (s *Store) CreateBulkJob(_ context.Context, job summary.BulkJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bulkJobs[job.ID]; exists {
		return fmt.Errorf("bulk job %s already exists", job.ID)
	}
	s.bulkJobs[job.ID] = cloneBulkJob(job)
	return nil
}

// GetBulkJob fetches a bulk job by ID.
func (s *Store) GetBulkJob(_ context.Context, id string) (summary.BulkJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.bulkJobs[id]
	if !ok {
		return summary.BulkJob{}, fmt.Errorf("bulk job %s: %w", id, summary.ErrNotFound)
	}
	return cloneBulkJob(job), nil
}

// UpdateBulkJob replaces a bulk job document.
func (s *Store) UpdateBulkJob(_ context.Context, job summary.BulkJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bulkJobs[job.ID]; !ok {
		return fmt.Errorf("bulk job %s: %w", job.ID, summary.ErrNotFound)
	}
	s.bulkJobs[job.ID] = cloneBulkJob(job)
	return nil
}

func cloneBulkJob(job summary.BulkJob) summary.BulkJob {
	cp := job
	if job.CandidateSlugs != nil {
		cp.CandidateSlugs = make([]string, len(job.CandidateSlugs))
		copy(cp.CandidateSlugs, job.CandidateSlugs)
	}
	if job.Results != nil {
		cp.Results = make(map[string]summary.BulkResult, len(job.Results))
		for k, v := range job.Results {
			cp.Results[k] = v
		}
	}
	return cp
}
