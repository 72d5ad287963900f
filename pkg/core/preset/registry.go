// Package preset holds reusable deal templates: pre-filled DealInputs for
// common strategies (value-add multifamily, stabilized net-lease, etc.)
// loaded from human-editable hjson files.
package preset

import (
	"fmt"
	"sort"
	"sync"

	"deal_engine/pkg/core/deal"
)

// DealTemplate is one preset: a named, categorized DealInput.
type DealTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Input       deal.DealInput `json:"input"`
}

// Registry holds all loaded templates.
type Registry struct {
	templates map[string]*DealTemplate
	mu        sync.RWMutex
}

var globalRegistry *Registry
var once sync.Once

// Get returns the global registry singleton.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{
			templates: make(map[string]*DealTemplate),
		}
	})
	return globalRegistry
}

// Register adds a template to the registry.
func (r *Registry) Register(t *DealTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("template ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates[t.ID] = t
	return nil
}

// GetTemplate retrieves a template by ID.
func (r *Registry) GetTemplate(id string) (*DealTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.templates[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("template not found: %s", id)
}

// List returns all registered template IDs, sorted for stable output.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListByCategory returns all templates in a specific category.
func (r *Registry) ListByCategory(category string) []*DealTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*DealTemplate
	for _, t := range r.templates {
		if t.Category == category {
			result = append(result, t)
		}
	}
	return result
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// Clear removes all templates (useful for testing).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = make(map[string]*DealTemplate)
}
