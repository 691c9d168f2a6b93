// Package aggregate holds the result set shared by every topping in a run.
package aggregate

import (
	"sort"
	"sync"
)

// Set maps a label to the name of the compiled unit found for it.
//
// Labels are written at most once; the first writer wins. Set is safe for
// concurrent use so toppings with disjoint labels can run side by side.
type Set struct {
	mu     sync.RWMutex
	values map[string]string
	order  []string // labels in write order
}

// New returns an empty set.
func New() *Set {
	return &Set{values: make(map[string]string)}
}

// SetIfAbsent records unit under label unless the label already has a value.
// It reports whether the write happened.
func (s *Set) SetIfAbsent(label, unit string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[label]; ok {
		return false
	}
	s.values[label] = unit
	s.order = append(s.order, label)
	return true
}

// Get returns the unit recorded for label.
func (s *Set) Get(label string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[label]
	return v, ok
}

// Has reports whether label has a value.
func (s *Set) Has(label string) bool {
	_, ok := s.Get(label)
	return ok
}

// Len returns the number of labels recorded.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of the mapping.
func (s *Set) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Labels returns the recorded labels sorted lexically.
func (s *Set) Labels() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// WriteOrder returns labels in the order they were first written.
func (s *Set) WriteOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
