package converter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/fileforge/fileforge/pkg/models"
)

// Registry is a two-tier converter lookup: an override tier checked
// first, then the built-in tier fixed at startup. The override tier is
// the extension seam — adding a category or swapping an implementation
// never touches dispatch code.
type Registry struct {
	mu        sync.RWMutex
	overrides map[models.Category]Converter
	builtin   map[models.Category]Converter
	logger    *slog.Logger
}

// NewRegistry creates a registry over the given built-in tier. The
// built-in map is copied and never mutated afterwards.
func NewRegistry(builtin map[models.Category]Converter, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	fixed := make(map[models.Category]Converter, len(builtin))
	for cat, conv := range builtin {
		fixed[cat] = conv
	}
	return &Registry{
		overrides: make(map[models.Category]Converter),
		builtin:   fixed,
		logger:    logger,
	}
}

// Register installs an override converter for a category. It fails if
// the converter does not satisfy the capability contract; it never
// panics past its boundary.
func (r *Registry) Register(category models.Category, conv Converter) error {
	if conv == nil {
		return fmt.Errorf("cannot register nil converter for category %q", category)
	}
	r.mu.Lock()
	r.overrides[category] = conv
	r.mu.Unlock()
	r.logger.Info("registered override converter", "category", category)
	return nil
}

// Unregister removes an override. Removing a non-existent override is
// a no-op reported as false for observability, not a crash.
func (r *Registry) Unregister(category models.Category) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.overrides[category]; !ok {
		r.logger.Warn("no override converter to unregister", "category", category)
		return false
	}
	delete(r.overrides, category)
	r.logger.Info("unregistered override converter", "category", category)
	return true
}

// Resolve returns the override if present, else the built-in, else nil.
// A nil result is a valid, expected outcome for unsupported categories:
// the orchestrator treats it as "skip", not "fatal".
func (r *Registry) Resolve(category models.Category) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if conv, ok := r.overrides[category]; ok {
		return conv
	}
	return r.builtin[category]
}

// Categories returns the union of both tiers, sorted for deterministic
// display.
func (r *Registry) Categories() []models.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[models.Category]struct{}, len(r.builtin)+len(r.overrides))
	for cat := range r.builtin {
		seen[cat] = struct{}{}
	}
	for cat := range r.overrides {
		seen[cat] = struct{}{}
	}
	out := make([]models.Category, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
