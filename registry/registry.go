package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultVersion is applied to registrations that do not declare a version.
const DefaultVersion = "1.0.0"

// Operation is the uniform invocation contract every registered tool
// implements. The returned string is the serialized result envelope.
type Operation func(ctx context.Context, args map[string]any) string

// ToolMetadata describes one registered tool. FunctionName identifies the
// bound operation and may differ from the advertised Name; it defaults to
// Name at registration.
type ToolMetadata struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     Category  `json:"category"`
	FunctionName string    `json:"function_name"`
	Operation    Operation `json:"-"`
	Tags         []string  `json:"tags,omitempty"`
	Version      string    `json:"version"`
}

func (m ToolMetadata) validate() error {
	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name must not be empty")
	}
	if strings.TrimSpace(m.Description) == "" {
		problems = append(problems, "description must not be empty")
	}
	if m.Operation == nil {
		problems = append(problems, "operation must be invocable")
	}
	if _, err := ParseCategory(string(m.Category)); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid tool metadata: %s", strings.Join(problems, "; "))
}

// Registry is an in-memory catalog of tool metadata keyed by name, with a
// category index kept in sync with the primary map. Instances are constructed
// and owned by the composition root; there is no package-level registry.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]ToolMetadata
	order      []string
	byCategory map[Category][]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries:    make(map[string]ToolMetadata),
		byCategory: make(map[Category][]string),
	}
}

// Register validates and stores a tool. Duplicate names and invalid metadata
// are rejected and leave the registry unchanged. The stored metadata is
// returned with defaults applied.
func (r *Registry) Register(meta ToolMetadata) (ToolMetadata, error) {
	if strings.TrimSpace(meta.Version) == "" {
		meta.Version = DefaultVersion
	}
	if strings.TrimSpace(meta.FunctionName) == "" {
		meta.FunctionName = meta.Name
	}
	if err := meta.validate(); err != nil {
		return ToolMetadata{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[meta.Name]; exists {
		return ToolMetadata{}, fmt.Errorf("tool %q is already registered", meta.Name)
	}
	r.entries[meta.Name] = meta
	r.order = append(r.order, meta.Name)
	r.byCategory[meta.Category] = append(r.byCategory[meta.Category], meta.Name)
	return meta, nil
}

// Get looks up a tool by exact name. An absent name is not an error.
func (r *Registry) Get(name string) (ToolMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.entries[name]
	return meta, ok
}

// GetAll returns every registered tool in insertion order.
func (r *Registry) GetAll() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolMetadata, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// GetByCategory returns the tools registered under category, in insertion
// order within that category.
func (r *Registry) GetByCategory(category Category) []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := r.byCategory[category]
	out := make([]ToolMetadata, 0, len(names))
	for _, name := range names {
		out = append(out, r.entries[name])
	}
	return out
}

// GetByTag returns the tools carrying tag, in full-registry insertion order.
func (r *Registry) GetByTag(tag string) []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ToolMetadata
	for _, name := range r.order {
		meta := r.entries[name]
		for _, t := range meta.Tags {
			if t == tag {
				out = append(out, meta)
				break
			}
		}
	}
	return out
}

// Unregister removes a tool from the primary map and its category index.
// It reports whether the name was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, ok := r.entries[name]
	if !ok {
		return false
	}
	delete(r.entries, name)
	r.order = removeName(r.order, name)
	r.byCategory[meta.Category] = removeName(r.byCategory[meta.Category], name)
	return true
}

// Clear removes every registration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]ToolMetadata)
	r.order = nil
	r.byCategory = make(map[Category][]string)
}

// ListNames returns registered tool names in insertion order.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ListCategories returns the registration count for every declared category,
// including categories with zero registrations.
func (r *Registry) ListCategories() map[Category]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		out[c] = len(r.byCategory[c])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i:i], names[i+1:]...)
		}
	}
	return names
}
