package summary

// ApplyPromptFields merges an allowed-field update map into a prompt.
// Unknown keys are ignored so callers can pass request bodies through after
// allow-listing.
func ApplyPromptFields(p *Prompt, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "name":
			p.Name = asString(value)
		case "description":
			p.Description = asString(value)
		case "category":
			p.Category = asString(value)
		case "type":
			p.Type = asString(value)
		case "enabled":
			p.Enabled = asBool(value)
		case "is_default":
			p.IsDefault = asBool(value)
		case "sort_order":
			p.SortOrder = asInt(value)
		case "system_prompt":
			p.SystemPrompt = asString(value)
		case "template":
			p.Template = asString(value)
		case "user_prompt":
			p.UserPrompt = asString(value)
		case "updated_at":
			p.UpdatedAt = asString(value)
		case "updated_by":
			p.UpdatedBy = asString(value)
		}
	}
}

// PromptFieldAllowed reports whether a key may be updated through the admin
// prompt endpoint.
func PromptFieldAllowed(key string) bool {
	switch key {
	case "name", "description", "category", "type", "enabled", "is_default",
		"sort_order", "system_prompt", "template", "user_prompt",
		"updated_at", "updated_by":
		return true
	}
	return false
}

// WebhookConfigFieldAllowed reports whether a key may be updated through the
// config endpoint.
func WebhookConfigFieldAllowed(key string) bool {
	switch key {
	case "enabled", "default_prompt_id", "prompt_category", "use_quil",
		"use_fireflies", "proceed_without_interview", "additional_context",
		"auto_push", "auto_push_delay_seconds", "create_tracking_note",
		"max_concurrent_tasks", "rate_limit_per_minute",
		"push_summary_to_candidate", "move_to_next_stage", "target_stage_id",
		"updated_at", "updated_by":
		return true
	}
	return false
}

// ApplyWebhookConfigFields merges an update map into a webhook config.
func ApplyWebhookConfigFields(cfg *WebhookConfig, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "enabled":
			cfg.Enabled = asBool(value)
		case "default_prompt_id":
			cfg.DefaultPromptID = asString(value)
		case "prompt_category":
			cfg.PromptCategory = asString(value)
		case "use_quil":
			cfg.UseQuil = asBool(value)
		case "use_fireflies":
			cfg.UseFireflies = asBool(value)
		case "proceed_without_interview":
			cfg.ProceedWithoutInterview = asBool(value)
		case "additional_context":
			cfg.AdditionalContext = asString(value)
		case "auto_push":
			cfg.AutoPush = asBool(value)
		case "auto_push_delay_seconds":
			cfg.AutoPushDelaySeconds = asInt(value)
		case "create_tracking_note":
			cfg.CreateTrackingNote = asBool(value)
		case "max_concurrent_tasks":
			cfg.MaxConcurrentTasks = asInt(value)
		case "rate_limit_per_minute":
			cfg.RateLimitPerMinute = asInt(value)
		case "push_summary_to_candidate":
			cfg.PushSummaryToCandidate = asBool(value)
		case "move_to_next_stage":
			cfg.MoveToNextStage = asBool(value)
		case "target_stage_id":
			cfg.TargetStageID = asInt(value)
		case "updated_at":
			cfg.UpdatedAt = asString(value)
		case "updated_by":
			cfg.UpdatedBy = asString(value)
		}
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
