package aggregate

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUndeclaredLabel is returned when a topping writes a label it did not
// declare in its provides list.
var ErrUndeclaredLabel = errors.New("label not declared in provides")

// WriteError records a rejected write.
type WriteError struct {
	Owner string
	Label string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %q: %s", e.Owner, e.Label, ErrUndeclaredLabel.Error())
}

func (e *WriteError) Unwrap() error { return ErrUndeclaredLabel }

// Scoped is the view of a Set handed to one topping. Reads see every label;
// writes are limited to the labels the topping provides.
type Scoped struct {
	set     *Set
	owner   string
	allowed map[string]struct{}

	mu      sync.Mutex
	written []string
}

// Scope returns a writer for owner restricted to provides.
func (s *Set) Scope(owner string, provides []string) *Scoped {
	allowed := make(map[string]struct{}, len(provides))
	for _, p := range provides {
		allowed[p] = struct{}{}
	}
	return &Scoped{set: s, owner: owner, allowed: allowed}
}

// Owner returns the name of the topping holding this scope.
func (w *Scoped) Owner() string { return w.owner }

// SetIfAbsent writes label unless it already has a value. Writing a label
// outside provides is a contract violation and returns a *WriteError.
func (w *Scoped) SetIfAbsent(label, unit string) (bool, error) {
	if _, ok := w.allowed[label]; !ok {
		return false, &WriteError{Owner: w.owner, Label: label}
	}
	if !w.set.SetIfAbsent(label, unit) {
		return false, nil
	}
	w.mu.Lock()
	w.written = append(w.written, label)
	w.mu.Unlock()
	return true, nil
}

// Get reads any label in the underlying set.
func (w *Scoped) Get(label string) (string, bool) { return w.set.Get(label) }

// Has reports whether any topping recorded label.
func (w *Scoped) Has(label string) bool { return w.set.Has(label) }

// Count returns how many of labels are present.
func (w *Scoped) Count(labels []string) int {
	n := 0
	for _, l := range labels {
		if w.set.Has(l) {
			n++
		}
	}
	return n
}

// Written returns the labels this scope recorded, in write order.
func (w *Scoped) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.written))
	copy(out, w.written)
	return out
}
