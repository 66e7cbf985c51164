package style

// Set is the cascade input for one element: its ordered style containers, an
// instance block that beats every container, and the current interaction
// state. Resolution is last-write-wins in that order.
type Set struct {
	containers []*Container
	instance   *Block
	state      State
	attrs      AttributeSource

	computed Computed
	values   [propertyCount]any
	changed  [propertyCount]bool
	pending  []PropertyID
	dirty    bool
}

func NewSet(attrs AttributeSource) *Set {
	s := &Set{attrs: attrs, dirty: true}
	s.computed = DefaultComputed()
	for i := range properties {
		s.values[i] = properties[i].def
	}
	return s
}

// SetContainers replaces the base style list.
func (s *Set) SetContainers(containers []*Container) {
	s.containers = append(s.containers[:0], containers...)
	s.dirty = true
}

func (s *Set) Containers() []*Container {
	return s.containers
}

// SetInstance assigns an element-local value that overrides every container.
func (s *Set) SetInstance(p PropertyID, v any) {
	if s.instance == nil {
		s.instance = NewBlock()
	}
	s.instance.Set(p, v)
	s.dirty = true
}

func (s *Set) ClearInstance(p PropertyID) {
	if s.instance == nil {
		return
	}
	s.instance.Remove(p)
	s.dirty = true
}

func (s *Set) State() State {
	return s.state
}

// SetState turns an interaction state on or off.
func (s *Set) SetState(st State, on bool) {
	next := s.state &^ st
	if on {
		next |= st
	}
	if next != s.state {
		s.state = next
		s.dirty = true
	}
}

// Invalidate forces the next Compute to re-run the cascade, e.g. after an
// attribute used by an attribute group changed.
func (s *Set) Invalidate() {
	s.dirty = true
}

func (s *Set) IsDirty() bool {
	return s.dirty
}

// Resolve returns the effective value of p and whether any group set it.
func (s *Set) Resolve(p PropertyID) (any, bool) {
	var v any
	found := false
	for _, c := range s.containers {
		for _, g := range c.Groups {
			if !g.Rule.Matches(s.attrs) {
				continue
			}
			if gv, ok := g.lookup(p, s.state); ok {
				v, found = gv, true
			}
		}
	}
	if iv, ok := s.instance.Get(p); ok {
		v, found = iv, true
	}
	return v, found
}

// Compute refreshes the snapshot when the inputs changed and records which
// properties moved.
func (s *Set) Compute() *Computed {
	if !s.dirty {
		return &s.computed
	}
	s.dirty = false
	for i := range properties {
		p := PropertyID(i)
		v, ok := s.Resolve(p)
		if !ok {
			v = properties[i].def
		}
		if v == s.values[i] {
			continue
		}
		s.values[i] = v
		properties[i].apply(&s.computed, v)
		if !s.changed[i] {
			s.changed[i] = true
			s.pending = append(s.pending, p)
		}
	}
	return &s.computed
}

// Computed returns the last snapshot without recomputing.
func (s *Set) Computed() *Computed {
	return &s.computed
}

// HasChanges reports whether Compute recorded changes not yet drained.
func (s *Set) HasChanges() bool {
	return len(s.pending) > 0
}

// DrainChanges delivers each changed property at most once and clears the
// queue.
func (s *Set) DrainChanges(fn func(PropertyID)) {
	for _, p := range s.pending {
		s.changed[p] = false
		if fn != nil {
			fn(p)
		}
	}
	s.pending = s.pending[:0]
}
