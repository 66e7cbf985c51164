package binding

import (
	"errors"
	"fmt"

	"loom/pkg/expr"
	"loom/pkg/types"
)

// ErrOutOfScope is returned for a variable declared outside the template
// boundary that encloses the reference and not exposed through a slot.
var ErrOutOfScope = errors.New("variable is not visible across a template boundary")

type scopeEntry struct {
	alias expr.Alias
}

type idCounter struct {
	next int
}

// Scope is the compile-time lexical scope of a template. Context variables
// get program-wide unique ids, so runtime lookups by id cannot be shadowed
// by an unrelated declaration.
type Scope struct {
	parent   *Scope
	entries  map[string]scopeEntry
	boundary bool
	exposed  map[string]bool
	ids      *idCounter
}

func NewScope() *Scope {
	return &Scope{entries: make(map[string]scopeEntry), ids: &idCounter{}}
}

// Child opens a nested scope that sees everything s sees.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, entries: make(map[string]scopeEntry), ids: s.ids}
}

// Boundary opens the scope of an instantiated template. Lookups stop at it
// except for the exposed names.
func (s *Scope) Boundary(exposed ...string) *Scope {
	c := s.Child()
	c.boundary = true
	c.exposed = make(map[string]bool, len(exposed))
	for _, n := range exposed {
		c.exposed[n] = true
	}
	return c
}

// Declare adds a context variable and returns its id.
func (s *Scope) Declare(name string, t *types.Type) int {
	s.ids.next++
	id := s.ids.next
	s.entries[name] = scopeEntry{alias: expr.Alias{Name: name, Kind: expr.AliasVariable, Type: t, ID: id}}
	return id
}

func (s *Scope) DeclareConstant(name string, t *types.Type, v any) {
	s.entries[name] = scopeEntry{alias: expr.Alias{Name: name, Kind: expr.AliasConstant, Type: t, Value: v}}
}

func (s *Scope) DeclareFunction(name string, m *types.Method) {
	s.entries[name] = scopeEntry{alias: expr.Alias{Name: name, Kind: expr.AliasMethod, Type: m.Return, Method: m}}
}

// Lookup finds name walking outwards. A name that exists only beyond a
// boundary that does not expose it yields ErrOutOfScope.
func (s *Scope) Lookup(name string) (expr.Alias, error) {
	crossed := false
	for c := s; c != nil; c = c.parent {
		if e, ok := c.entries[name]; ok {
			if crossed {
				return expr.Alias{}, fmt.Errorf("%s: %w", name, ErrOutOfScope)
			}
			return e.alias, nil
		}
		if c.boundary && !c.exposed[name] {
			crossed = true
		}
	}
	return expr.Alias{}, fmt.Errorf("%s: %w", name, expr.ErrUnknownAlias)
}

// ResolveAlias implements expr.AliasResolver.
func (s *Scope) ResolveAlias(name string) (expr.Alias, bool) {
	a, err := s.Lookup(name)
	return a, err == nil
}
