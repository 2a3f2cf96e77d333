package quil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

const quilNoteBody = `Quil 5/12/2024: Intro Call with Grace<br>
<b>----Summary----</b>
<p>Strong systems background. Led a compiler team.</p>
<b>----Manual Notes----</b>
<p>Follow up next week.</p>
<a href="https://app.salesq.app/review/abc123">Open in Quil</a>`

func TestIsQuilNote(t *testing.T) {
	t.Parallel()

	require.True(t, IsQuilNote(summary.Note{Description: quilNoteBody}))
	require.False(t, IsQuilNote(summary.Note{Description: "Called the candidate, no answer."}))
	require.False(t, IsQuilNote(summary.Note{Description: "Quilted together feedback from the panel."}))
	require.False(t, IsQuilNote(summary.Note{
		Description: "Spoke with the client. They saw the Quil 1/2/2024: Screen note already.",
	}))
}

func TestParseNote(t *testing.T) {
	t.Parallel()

	iv := ParseNote(summary.Note{ID: 7, Description: quilNoteBody})
	require.Equal(t, 7, iv.NoteID)
	require.Equal(t, "5/12/2024", iv.Date)
	require.Equal(t, "Intro Call with Grace", iv.Title)
	require.Contains(t, iv.SummaryHTML, "Strong systems background")
	require.NotContains(t, iv.SummaryHTML, "Follow up next week")
	require.Equal(t, "https://app.salesq.app/review/abc123", iv.Link)
}

func TestParseNoteMissingEndMarker(t *testing.T) {
	t.Parallel()

	body := "Quil 1/2/2024: Screen\n<b>----Summary----</b>\n<p>All of it.</p>"
	iv := ParseNote(summary.Note{Description: body})
	require.Contains(t, iv.SummaryHTML, "All of it.")
}

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateHTML(_ context.Context, prompt string, _ []summary.ResumeFile) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func quilNote(id int, date, title string) summary.Note {
	return summary.Note{
		ID:          id,
		Description: fmt.Sprintf("Quil %s: %s<br><b>----Summary----</b><p>notes</p>", date, title),
	}
}

func TestBestInterviewNoNotes(t *testing.T) {
	t.Parallel()

	sel := NewSelector(&fakeGenerator{}, nil)
	_, err := sel.BestInterview(context.Background(), []summary.Note{
		{Description: "plain note"},
	}, "Platform Engineer")
	require.Error(t, err)
	require.True(t, errors.Is(err, summary.ErrNotFound))
}

func TestBestInterviewSingleNoteSkipsModel(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("should not be called")}
	sel := NewSelector(gen, nil)
	iv, err := sel.BestInterview(context.Background(), []summary.Note{
		quilNote(1, "3/3/2024", "Only Interview"),
	}, "Platform Engineer")
	require.NoError(t, err)
	require.Equal(t, "Only Interview", iv.Title)
	require.Empty(t, gen.prompt)
}

func TestBestInterviewUsesModelVerdict(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{answer: "```json\n{\"index\": 1}\n```"}
	sel := NewSelector(gen, nil)
	iv, err := sel.BestInterview(context.Background(), []summary.Note{
		quilNote(1, "3/3/2024", "Data Analyst Screen"),
		quilNote(2, "4/4/2024", "Platform Engineer Screen"),
	}, "Platform Engineer")
	require.NoError(t, err)
	require.Equal(t, "Platform Engineer Screen", iv.Title)
	require.Contains(t, gen.prompt, "Platform Engineer")
	require.Contains(t, gen.prompt, "0. Data Analyst Screen")
}

func TestBestInterviewFallsBackOnBadAnswer(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{answer: "I think the second one"}
	sel := NewSelector(gen, nil)
	iv, err := sel.BestInterview(context.Background(), []summary.Note{
		quilNote(1, "3/3/2024", "First"),
		quilNote(2, "4/4/2024", "Second"),
	}, "Role")
	require.NoError(t, err)
	require.Equal(t, "First", iv.Title)
}

func TestBestInterviewFallsBackOnModelError(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	sel := NewSelector(gen, nil)
	iv, err := sel.BestInterview(context.Background(), []summary.Note{
		quilNote(1, "3/3/2024", "First"),
		quilNote(2, "4/4/2024", "Second"),
	}, "Role")
	require.NoError(t, err)
	require.Equal(t, "First", iv.Title)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	require.Equal(t, `{"index": 0}`, extractJSON("```json\n{\"index\": 0}\n```"))
	require.Equal(t, `{"index": 2}`, extractJSON(`The answer is {"index": 2} as requested.`))
	require.Equal(t, "", extractJSON("no json here"))
}
