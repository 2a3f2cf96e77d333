// Package prompts manages prompt configurations: built-in defaults shipped
// with the binary, store-backed overrides, and full prompt assembly.
package prompts

import (
	_ "embed"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

//go:embed assets/recruitment_detailed_system.txt
var recruitmentDetailedSystem string

//go:embed assets/recruitment_detailed_template.html
var recruitmentDetailedTemplate string

//go:embed assets/recruitment_detailed_user.txt
var recruitmentDetailedUser string

//go:embed assets/anonymous_detailed_system.txt
var anonymousDetailedSystem string

//go:embed assets/anonymous_detailed_template.html
var anonymousDetailedTemplate string

//go:embed assets/anonymous_detailed_user.txt
var anonymousDetailedUser string

//go:embed assets/client_email_system.txt
var clientEmailSystem string

//go:embed assets/client_email_user.txt
var clientEmailUser string

// Builtin returns the prompt configurations compiled into the binary. They
// back the service when the prompt store is empty or unreachable.
func Builtin() []summary.Prompt {
	return []summary.Prompt{
		{
			ID:           "recruitment.detailed",
			Slug:         "recruitment.detailed",
			Name:         "Detailed Candidate Brief",
			Description:  "Decision-ready one-page brief with full candidate identity.",
			Category:     "single",
			Type:         "detailed",
			Enabled:      true,
			IsDefault:    true,
			SortOrder:    1,
			SystemPrompt: recruitmentDetailedSystem,
			Template:     recruitmentDetailedTemplate,
			UserPrompt:   recruitmentDetailedUser,
		},
		{
			ID:           "anonymous.detailed",
			Slug:         "anonymous.detailed",
			Name:         "Anonymous Candidate Brief",
			Description:  "Decision-ready brief with all PII replaced by descriptors.",
			Category:     "single",
			Type:         "detailed",
			Enabled:      true,
			SortOrder:    2,
			SystemPrompt: anonymousDetailedSystem,
			Template:     anonymousDetailedTemplate,
			UserPrompt:   anonymousDetailedUser,
		},
		{
			ID:           "client-email.detailed",
			Slug:         "client-email.detailed",
			Name:         "Client Shortlist Email",
			Description:  "Combined shortlist email covering several candidates.",
			Category:     "multiple",
			Type:         "detailed",
			Enabled:      true,
			IsDefault:    true,
			SortOrder:    1,
			SystemPrompt: clientEmailSystem,
			UserPrompt:   clientEmailUser,
		},
	}
}
