// Package quil extracts Quil interview summaries from RecruitCRM notes.
// Quil has no API of its own; it pushes interview write-ups into the ATS as
// notes whose text starts with "Quil <date>: <title>".
package quil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Anchored: only notes that begin with the header are Quil's, a mid-body
// mention of "Quil <date>:" is just prose.
var headerPattern = regexp.MustCompile(`^Quil (\d{1,2}/\d{1,2}/\d{4}): (.+)`)

const (
	summaryStartMarker = "<b>----Summary----</b>"
	summaryEndMarker   = "<b>----Manual Notes----</b>"
)

// IsQuilNote reports whether the note was written by the Quil integration.
func IsQuilNote(n summary.Note) bool {
	return headerPattern.MatchString(n.Description)
}

// ParseNote extracts the structured interview content from a Quil note.
func ParseNote(n summary.Note) summary.QuilInterview {
	iv := summary.QuilInterview{NoteID: n.ID}

	if m := headerPattern.FindStringSubmatch(n.Description); m != nil {
		iv.Date = m[1]
		iv.Title = strings.TrimSpace(firstLine(m[2]))
	}
	iv.SummaryHTML = extractSummary(n.Description)
	iv.Link = extractSalesqLink(n.Description)
	return iv
}

func firstLine(s string) string {
	// Titles run to the end of the header line; the description continues
	// with HTML afterwards.
	if idx := strings.IndexAny(s, "<\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func extractSummary(description string) string {
	start := strings.Index(description, summaryStartMarker)
	if start < 0 {
		return ""
	}
	rest := description[start+len(summaryStartMarker):]
	if end := strings.Index(rest, summaryEndMarker); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// extractSalesqLink returns the first anchor href pointing at the Quil
// review app.
func extractSalesqLink(description string) string {
	doc, err := html.Parse(strings.NewReader(description))
	if err != nil {
		return ""
	}
	var link string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if link != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.Contains(attr.Val, "salesq.app") {
					link = attr.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return link
}
