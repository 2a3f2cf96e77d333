package recruitcrm

import (
	"fmt"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// unwrapData returns the "data" object when the API wraps the payload,
// otherwise the payload itself.
func unwrapData(payload map[string]any) map[string]any {
	if inner, ok := payload["data"].(map[string]any); ok {
		return inner
	}
	return payload
}

// unwrapList returns the "data" array when present, otherwise nil.
func unwrapList(payload map[string]any) []any {
	if inner, ok := payload["data"].([]any); ok {
		return inner
	}
	return nil
}

func parseCandidate(m map[string]any) *summary.Candidate {
	c := &summary.Candidate{
		Slug:         getString(m, "slug"),
		FirstName:    getString(m, "first_name"),
		LastName:     getString(m, "last_name"),
		CustomFields: parseCustomFields(m["custom_fields"]),
		Raw:          m,
	}
	if res, ok := m["resume"].(map[string]any); ok {
		c.Resume = &summary.Resume{
			Filename: getString(res, "filename"),
			URL:      getString(res, "url"),
			FileLink: getString(res, "file_link"),
		}
	}
	return c
}

func parseJob(m map[string]any) *summary.JobRecord {
	return &summary.JobRecord{
		Slug:         getString(m, "slug"),
		Name:         getString(m, "name"),
		CompanyName:  getString(m, "company_name"),
		Description:  getString(m, "job_description_text"),
		CustomFields: parseCustomFields(m["custom_fields"]),
		Raw:          m,
	}
}

func parseAssignedCandidate(m map[string]any) summary.AssignedCandidate {
	ac := summary.AssignedCandidate{StatusID: getInt(m, "status_id")}
	if cand, ok := m["candidate"].(map[string]any); ok {
		ac.Candidate = *parseCandidate(cand)
		if ac.StatusID == 0 {
			ac.StatusID = getInt(cand, "status_id")
		}
	} else {
		ac.Candidate = *parseCandidate(m)
	}
	return ac
}

func parseCustomFields(v any) []summary.CustomField {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]summary.CustomField, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, summary.CustomField{
			FieldName: getString(m, "field_name"),
			Label:     getString(m, "label"),
			Value:     getString(m, "value"),
		})
	}
	return out
}

func getString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func getInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}

func getStringSlice(m map[string]any, key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
