// Package env models the per-request variable environment the SSI core
// reads and writes: $name interpolation (spec.md §4.B), echo/set/printenv
// (spec.md §4.H), and the CGI-style variables published at request start
// (spec.md §3, §6).
package env

// Environment is the collaborator-owned variable table. Reads are
// case-sensitive (spec.md §3). Iteration order must be stable and equal
// to insertion order so that #printenv output is deterministic
// (SPEC_FULL.md, supplemented feature 2).
type Environment interface {
	// Get returns the value of name and whether it is set.
	Get(name string) (string, bool)
	// Set assigns value to name, adding it if not already present.
	Set(name, value string)
	// Each calls fn for every variable in insertion order. Iteration
	// stops early if fn returns false.
	Each(fn func(name, value string) bool)
}

// Map is the default Environment implementation: an insertion-ordered
// string-to-string table.
type Map struct {
	values map[string]string
	order  []string
}

// NewMap returns an empty environment.
func NewMap() *Map {
	return &Map{values: make(map[string]string)}
}

// Get implements Environment.
func (m *Map) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Set implements Environment.
func (m *Map) Set(name, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[name]; !exists {
		m.order = append(m.order, name)
	}
	m.values[name] = value
}

// Each implements Environment.
func (m *Map) Each(fn func(name, value string) bool) {
	for _, name := range m.order {
		if !fn(name, m.values[name]) {
			return
		}
	}
}

// Clone returns a deep copy of m, independent of further mutation on
// either side. It is a general-purpose utility — NOT what a nested
// #include should use: a nested document's #set must remain visible to
// its parent once the include returns (spec.md §4.I's cross-arena
// quirk), which requires the parent and the nested filter to share the
// very same *Map, not a copy of it. Callers wiring up nested includes
// should pass the parent's Map by reference instead of calling Clone.
func (m *Map) Clone() *Map {
	clone := NewMap()
	m.Each(func(name, value string) bool {
		clone.Set(name, value)
		return true
	})
	return clone
}
