package artifact

import "burger/internal/classfile"

// Entry is one named blob of a Memory artifact.
type Entry struct {
	Name string
	Data []byte
}

// Memory is an artifact held entirely in memory, in insertion order.
type Memory struct {
	entries []Entry
	index   map[string]int
}

// NewMemory builds an artifact from entries. Later duplicates are ignored.
func NewMemory(entries ...Entry) *Memory {
	m := &Memory{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.Add(e.Name, e.Data)
	}
	return m
}

// Add appends an entry unless the name already exists.
func (m *Memory) Add(name string, data []byte) {
	if _, ok := m.index[name]; ok {
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, Entry{Name: name, Data: data})
}

func (m *Memory) Names() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Name
	}
	return out
}

func (m *Memory) Open(name string) (*classfile.ClassFile, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, &EntryError{Name: name, Err: ErrNoEntry}
	}
	cf, err := classfile.Parse(m.entries[i].Data)
	if err != nil {
		return nil, &EntryError{Name: name, Err: err}
	}
	return cf, nil
}

// ConcurrentSafe reports true: entries are never mutated during Open.
func (m *Memory) ConcurrentSafe() bool { return true }
