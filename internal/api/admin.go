package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func (s *Server) adminListPrompts(w http.ResponseWriter, r *http.Request) {
	list, err := s.prompts.ListPrompts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "prompts": list})
}

func (s *Server) adminGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.prompts.GetPrompt(r.Context(), chi.URLParam(r, "prompt_id"))
	if err != nil {
		writeError(w, errStatus(err), "prompt not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "prompt": p})
}

func (s *Server) adminCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var p summary.Prompt
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Name == "" || p.Slug == "" || p.Category == "" || p.Type == "" {
		writeError(w, http.StatusBadRequest, "missing required field: name, slug, category, type")
		return
	}
	if _, err := s.prompts.GetPrompt(r.Context(), p.Slug); err == nil {
		writeError(w, http.StatusBadRequest, "slug already exists")
		return
	}

	p.ID = p.Slug
	if p.SortOrder == 0 {
		p.SortOrder = 100
	}
	p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	p.UpdatedAt = p.CreatedAt

	if err := s.prompts.CreatePrompt(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p.IsDefault {
		if err := s.prompts.SetDefaultPrompt(r.Context(), p.ID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "prompt_id": p.ID})
}

func (s *Server) adminUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}
	allowed := make(map[string]any, len(fields))
	for k, v := range fields {
		if summary.PromptFieldAllowed(k) {
			allowed[k] = v
		}
	}
	if len(allowed) == 0 {
		writeError(w, http.StatusBadRequest, "no updatable fields in request")
		return
	}
	allowed["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	id := chi.URLParam(r, "prompt_id")
	if err := s.prompts.UpdatePrompt(r.Context(), id, allowed); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	if def, ok := allowed["is_default"].(bool); ok && def {
		if err := s.prompts.SetDefaultPrompt(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) adminDeletePrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "prompt_id")
	p, err := s.prompts.GetPrompt(r.Context(), id)
	if err != nil {
		writeError(w, errStatus(err), "prompt not found")
		return
	}
	if p.IsDefault {
		writeError(w, http.StatusBadRequest, "cannot delete default prompt")
		return
	}
	if err := s.prompts.DeletePrompt(r.Context(), id); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) adminSetDefaultPrompt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "prompt_id")
	if err := s.prompts.SetDefaultPrompt(r.Context(), id); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) getWebhookConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configStore.WebhookConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) updateWebhookConfig(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}
	allowed := make(map[string]any, len(fields))
	for k, v := range fields {
		if summary.WebhookConfigFieldAllowed(k) {
			allowed[k] = v
		}
	}
	if len(allowed) == 0 {
		writeError(w, http.StatusBadRequest, "no updatable fields in request")
		return
	}
	allowed["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	// a changed default prompt must resolve before it is saved
	if id, ok := allowed["default_prompt_id"].(string); ok && id != "" {
		if _, err := s.registry.Get(r.Context(), id); err != nil {
			if errors.Is(err, summary.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "default_prompt_id does not match any prompt")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := s.configStore.UpdateWebhookConfig(r.Context(), allowed); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "configuration updated"})
}

func (s *Server) listSummaryRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	runs, err := s.runs.ListRuns(r.Context(), summary.RunFilter{
		Limit:         limit,
		CandidateSlug: r.URL.Query().Get("candidate"),
		JobSlug:       r.URL.Query().Get("job"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "runs": runs})
}
