package prompts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// Registry resolves prompt configurations from the prompt store, falling back
// to the compiled-in defaults. The store may be nil in development.
type Registry struct {
	store  summary.PromptStore
	logger *zap.Logger
}

// NewRegistry builds a Registry over an optional store.
func NewRegistry(store summary.PromptStore, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, logger: logger}
}

// Get returns the prompt with the given ID, preferring the store.
func (r *Registry) Get(ctx context.Context, id string) (*summary.Prompt, error) {
	if r.store != nil {
		p, err := r.store.GetPrompt(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, summary.ErrNotFound) {
			r.logger.Warn("prompt store lookup failed, trying builtins",
				zap.String("prompt_id", id), zap.Error(err))
		}
	}
	for _, b := range Builtin() {
		if b.ID == id {
			builtin := b
			return &builtin, nil
		}
	}
	return nil, fmt.Errorf("prompt %s: %w", id, summary.ErrNotFound)
}

// Default returns the default prompt of a category, store first.
func (r *Registry) Default(ctx context.Context, category string) (*summary.Prompt, error) {
	list, err := r.List(ctx, category)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.IsDefault {
			prompt := p
			return &prompt, nil
		}
	}
	if len(list) > 0 {
		prompt := list[0]
		return &prompt, nil
	}
	return nil, fmt.Errorf("no prompts for category %s: %w", category, summary.ErrNotFound)
}

// List returns the enabled prompts of a category, merging store prompts with
// builtins the store does not override. category "" means all categories.
func (r *Registry) List(ctx context.Context, category string) ([]summary.Prompt, error) {
	var out []summary.Prompt
	seen := map[string]bool{}

	if r.store != nil {
		stored, err := r.store.ListPrompts(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("list prompts: %w", err)
		}
		for _, p := range stored {
			seen[p.ID] = true
			if p.Enabled {
				out = append(out, p)
			}
		}
	}
	for _, b := range Builtin() {
		if seen[b.ID] {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
