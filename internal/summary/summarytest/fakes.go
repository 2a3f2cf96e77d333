// Package summarytest provides hand-rolled fakes for the provider interfaces,
// shared by the test suites of the packages that consume them.
package summarytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// FakeATS implements summary.ATS over in-memory fixtures.
type FakeATS struct {
	mu sync.Mutex

	Candidates map[string]*summary.Candidate
	Jobs       map[string]*summary.JobRecord
	Assigned   map[string][]summary.AssignedCandidate
	Stages     []summary.Stage
	Fields     map[string][]summary.CustomField
	Notes      map[string][]summary.Note
	Files      map[string][]byte

	PushErr  error
	NoteErr  error
	StageErr error

	PushedSummaries map[string]string
	CreatedNotes    []string
	StageMoves      []StageMove
}

// StageMove records one MoveStage call.
type StageMove struct {
	CandidateSlug string
	JobSlug       string
	StageID       int
}

// NewFakeATS returns an empty FakeATS ready for fixtures.
func NewFakeATS() *FakeATS {
	return &FakeATS{
		Candidates:      map[string]*summary.Candidate{},
		Jobs:            map[string]*summary.JobRecord{},
		Assigned:        map[string][]summary.AssignedCandidate{},
		Fields:          map[string][]summary.CustomField{},
		Notes:           map[string][]summary.Note{},
		Files:           map[string][]byte{},
		PushedSummaries: map[string]string{},
	}
}

// Candidate returns a fixture candidate or ErrNotFound.
func (f *FakeATS) Candidate(_ context.Context, slug string) (*summary.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Candidates[slug]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", slug, summary.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

// Job returns a fixture job or ErrNotFound.
func (f *FakeATS) Job(_ context.Context, slug string) (*summary.JobRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.Jobs[slug]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", slug, summary.ErrNotFound)
	}
	cp := *j
	return &cp, nil
}

// AssignedCandidates returns the fixtures for a job, filtered by stage.
func (f *FakeATS) AssignedCandidates(_ context.Context, jobSlug string, statusID int) ([]summary.AssignedCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []summary.AssignedCandidate
	for _, ac := range f.Assigned[jobSlug] {
		if statusID <= 0 || ac.StatusID == statusID {
			out = append(out, ac)
		}
	}
	return out, nil
}

// HiringPipeline returns the stage fixtures.
func (f *FakeATS) HiringPipeline(context.Context) ([]summary.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]summary.Stage(nil), f.Stages...), nil
}

// AssociatedFields returns the fixture fields for candidate+job.
func (f *FakeATS) AssociatedFields(_ context.Context, candidateSlug, jobSlug string) ([]summary.CustomField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Fields[candidateSlug+"/"+jobSlug], nil
}

// CandidateNotes returns the note fixtures for a candidate.
func (f *FakeATS) CandidateNotes(_ context.Context, candidateSlug string) ([]summary.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]summary.Note(nil), f.Notes[candidateSlug]...), nil
}

// PushSummary records the pushed summary.
func (f *FakeATS) PushSummary(_ context.Context, candidateSlug, summaryHTML string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PushErr != nil {
		return f.PushErr
	}
	f.PushedSummaries[candidateSlug] = summaryHTML
	return nil
}

// CreateNote records the note text.
func (f *FakeATS) CreateNote(_ context.Context, candidateSlug, jobSlug, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NoteErr != nil {
		return 0, f.NoteErr
	}
	f.CreatedNotes = append(f.CreatedNotes, text)
	return len(f.CreatedNotes), nil
}

// MoveStage records the stage move.
func (f *FakeATS) MoveStage(_ context.Context, candidateSlug, jobSlug string, stageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StageErr != nil {
		return f.StageErr
	}
	f.StageMoves = append(f.StageMoves, StageMove{candidateSlug, jobSlug, stageID})
	return nil
}

// DownloadFile returns the file fixture for a URL.
func (f *FakeATS) DownloadFile(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Files[url]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", url, summary.ErrNotFound)
	}
	return data, nil
}

// FakeInterviews implements summary.InterviewSource.
type FakeInterviews struct {
	Interviews map[string]*summary.Interview
	Err        error
}

// Interview returns the fixture keyed by "jobOpeningID/interviewID".
func (f *FakeInterviews) Interview(_ context.Context, jobOpeningID, interviewID string) (*summary.Interview, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	iv, ok := f.Interviews[jobOpeningID+"/"+interviewID]
	if !ok {
		return nil, fmt.Errorf("interview %s: %w", interviewID, summary.ErrNotFound)
	}
	return iv, nil
}

// FakeTranscripts implements summary.TranscriptSource.
type FakeTranscripts struct {
	Transcripts map[string]*summary.Transcript
	Err         error
}

// Transcript returns the fixture for an ID.
func (f *FakeTranscripts) Transcript(_ context.Context, id string) (*summary.Transcript, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	tr, ok := f.Transcripts[id]
	if !ok {
		return nil, fmt.Errorf("transcript %s: %w", id, summary.ErrNotFound)
	}
	return tr, nil
}

// FakeGenerator implements summary.Generator with canned answers.
type FakeGenerator struct {
	mu sync.Mutex

	HTML    string
	Text    string
	HTMLErr error
	TextErr error

	Prompts     []string
	Attachments [][]summary.ResumeFile
}

// GenerateHTML records the prompt and returns the canned HTML.
func (f *FakeGenerator) GenerateHTML(_ context.Context, prompt string, resumes []summary.ResumeFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	f.Attachments = append(f.Attachments, resumes)
	if f.HTMLErr != nil {
		return "", f.HTMLErr
	}
	return f.HTML, nil
}

// GenerateText records the prompt and returns the canned text.
func (f *FakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if f.TextErr != nil {
		return "", f.TextErr
	}
	return f.Text, nil
}

// LastPrompt returns the most recent prompt, or "".
func (f *FakeGenerator) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

// FixedClock implements summary.Clock.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time { return c.T }

// SequenceIDs implements summary.IDGenerator with predictable IDs.
type SequenceIDs struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

// NewID returns prefix-1, prefix-2, ...
func (s *SequenceIDs) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, s.n), nil
}
