package types

import (
	"fmt"
	"sort"
	"sync"
)

// ElementType is a template tag bound to a registered type and a factory for
// fresh instances.
type ElementType struct {
	Tag  string
	Type *Type
	New  func() any
}

// Registry maps template tags to element types. The zero value is not
// usable; call NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	elements map[string]*ElementType
	enums    map[string]*Type
}

func NewRegistry() *Registry {
	return &Registry{elements: make(map[string]*ElementType), enums: make(map[string]*Type)}
}

// Default is the process-wide registry.
var Default = NewRegistry()

func (r *Registry) RegisterElement(tag string, t *Type, factory func() any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.elements[tag]; ok {
		return fmt.Errorf("element tag %q is already registered", tag)
	}
	r.elements[tag] = &ElementType{Tag: tag, Type: t, New: factory}
	return nil
}

func (r *Registry) Element(tag string) (*ElementType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.elements[tag]
	return e, ok
}

// Tags returns every registered tag, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.elements))
	for t := range r.elements {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// RegisterEnum exposes an enum type to expressions by its name.
func (r *Registry) RegisterEnum(t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[t.Name] = t
}

func (r *Registry) Enum(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.enums[name]
	return t, ok
}

// Reset drops every registration. Used when templates are reloaded.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements = make(map[string]*ElementType)
	r.enums = make(map[string]*Type)
}
