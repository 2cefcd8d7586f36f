package processor

import (
	"fmt"
	"sort"

	"github.com/roach88/genxdata/internal/strategy"
)

// StateMap holds the strategy instance and last reported state for every
// (spec, column) pair of one run.
type StateMap struct {
	instances map[string]strategy.Strategy
	states    map[string]strategy.State
}

// NewStateMap creates an empty map.
func NewStateMap() *StateMap {
	return &StateMap{
		instances: make(map[string]strategy.Strategy),
		states:    make(map[string]strategy.State),
	}
}

// stateKey identifies a strategy instance. The spec index keeps two specs
// targeting different columns with the same strategy apart.
func stateKey(specIndex int, column string) string {
	return fmt.Sprintf("%d:%s", specIndex, column)
}

// Instance returns the strategy stored under key.
func (m *StateMap) Instance(key string) (strategy.Strategy, bool) {
	s, ok := m.instances[key]
	return s, ok
}

// Put stores a freshly created strategy.
func (m *StateMap) Put(key string, s strategy.Strategy) {
	m.instances[key] = s
}

// Record snapshots the current state of the strategy under key, if it is
// Stateful.
func (m *StateMap) Record(key string) {
	if st, ok := m.instances[key].(strategy.Stateful); ok {
		m.states[key] = st.CurrentState().Clone()
	}
}

// Snapshot returns a copy of every recorded state.
func (m *StateMap) Snapshot() map[string]strategy.State {
	out := make(map[string]strategy.State, len(m.states))
	for k, v := range m.states {
		out[k] = v.Clone()
	}
	return out
}

// Seeds returns the seed of every Seedable instance, keyed like Snapshot.
func (m *StateMap) Seeds() map[string]uint64 {
	out := make(map[string]uint64, len(m.instances))
	for _, k := range m.Keys() {
		if s, ok := m.instances[k].(strategy.Seedable); ok {
			out[k] = s.Seed()
		}
	}
	return out
}

// Keys returns the instance keys in sorted order.
func (m *StateMap) Keys() []string {
	out := make([]string, 0, len(m.instances))
	for k := range m.instances {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
