package artifact

import (
	"fmt"
	"strings"
	"sync"

	"burger/internal/classfile"
)

// UnitSuffix marks entries that hold compiled units.
const UnitSuffix = ".class"

// Artifact is a container of named entries, some of which are compiled units.
type Artifact interface {
	// Names returns every entry name in container order.
	Names() []string
	// Open decodes the named entry as a class file.
	Open(name string) (*classfile.ClassFile, error)
}

// ConcurrentSafe is implemented by artifacts whose Open may be called from
// several goroutines at once.
type ConcurrentSafe interface {
	ConcurrentSafe() bool
}

// IsUnit reports whether the entry name denotes a compiled unit.
func IsUnit(name string) bool {
	return strings.HasSuffix(name, UnitSuffix)
}

// Units returns the names of compiled units in container order.
func Units(a Artifact) []string {
	var out []string
	for _, name := range a.Names() {
		if IsUnit(name) {
			out = append(out, name)
		}
	}
	return out
}

// Synchronized serializes Open calls on a unless it declares itself safe
// for concurrent use.
func Synchronized(a Artifact) Artifact {
	if cs, ok := a.(ConcurrentSafe); ok && cs.ConcurrentSafe() {
		return a
	}
	if _, ok := a.(*locked); ok {
		return a
	}
	return &locked{inner: a}
}

type locked struct {
	mu    sync.Mutex
	inner Artifact
}

func (l *locked) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Names()
}

func (l *locked) Open(name string) (*classfile.ClassFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Open(name)
}

func (l *locked) ConcurrentSafe() bool { return true }

// EntryError wraps a failure to open or decode one entry.
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %s: %v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
