package classfile

// View is a read-only, ordered view over a constant pool.
type View interface {
	// Len returns the number of entries.
	Len() int
	// At returns the i-th entry in pool order, 0 <= i < Len().
	At(i int) Constant
}

// ConstantPool is the decoded constant table of one class file.
//
// It is immutable after Parse and safe for concurrent read access.
type ConstantPool struct {
	entries []Constant
	slots   []int // JVM index -> position in entries, -1 for unusable slots
}

func newConstantPool(count int) *ConstantPool {
	slots := make([]int, count)
	for i := range slots {
		slots[i] = -1
	}
	return &ConstantPool{
		entries: make([]Constant, 0, count),
		slots:   slots,
	}
}

func (p *ConstantPool) add(c Constant) {
	p.slots[c.Index] = len(p.entries)
	p.entries = append(p.entries, c)
}

// Len returns the number of entries, not counting the unusable slot after
// each long or double.
func (p *ConstantPool) Len() int { return len(p.entries) }

// At returns the i-th entry in pool order.
func (p *ConstantPool) At(i int) Constant { return p.entries[i] }

// Get returns the entry stored at the given JVM pool index.
func (p *ConstantPool) Get(index int) (Constant, bool) {
	if index <= 0 || index >= len(p.slots) {
		return Constant{}, false
	}
	pos := p.slots[index]
	if pos < 0 {
		return Constant{}, false
	}
	return p.entries[pos], true
}

// Strings returns the text of every String constant in pool order.
func (p *ConstantPool) Strings() []string {
	var out []string
	for _, c := range p.entries {
		if c.Type == ConstantString {
			out = append(out, c.Value)
		}
	}
	return out
}
