package pipeline

import (
	"container/heap"
	"sort"

	"burger/internal/topping"
)

// Plan is an immutable, validated execution order for a set of toppings.
//
// Toppings keep their declaration index; whenever two toppings are
// independent the one declared first runs first.
type Plan struct {
	toppings  []topping.Topping // declaration order
	byName    map[string]int
	providers map[string]int // label -> declaring topping

	outgoing [][]int // i -> toppings that depend on i, ascending
	incoming [][]int // i -> toppings i depends on, ascending
	indeg    []int

	order []int
	depth []int
}

// NewPlan resolves every topping's Depends against topping names and the
// labels other toppings provide, and orders the result.
//
// It rejects:
//   - empty or duplicate topping names
//   - a label provided by more than one topping
//   - dependencies nothing satisfies
//   - a topping depending on itself
//   - any cycle
func NewPlan(toppings ...topping.Topping) (*Plan, error) {
	if len(toppings) == 0 {
		return nil, planErrorf(ErrInvalidPlan, "", "no toppings")
	}

	p := &Plan{
		toppings:  append([]topping.Topping(nil), toppings...),
		byName:    make(map[string]int, len(toppings)),
		providers: make(map[string]int),
	}

	for i, t := range p.toppings {
		name := t.Name()
		if name == "" {
			return nil, planErrorf(ErrInvalidPlan, "", "topping #%d has no name", i)
		}
		if _, dup := p.byName[name]; dup {
			return nil, planErrorf(ErrInvalidPlan, name, "duplicate topping name")
		}
		p.byName[name] = i
	}

	for i, t := range p.toppings {
		for _, label := range t.Provides() {
			if owner, taken := p.providers[label]; taken && owner != i {
				return nil, planErrorf(ErrOverlappingProvides, t.Name(), "%q already provided by %s", label, p.toppings[owner].Name())
			}
			p.providers[label] = i
		}
	}

	n := len(p.toppings)
	p.outgoing = make([][]int, n)
	p.incoming = make([][]int, n)
	p.indeg = make([]int, n)

	for i, t := range p.toppings {
		seen := make(map[int]struct{})
		for _, dep := range t.Depends() {
			j, ok := p.resolve(dep)
			if !ok {
				return nil, planErrorf(ErrUnsatisfied, t.Name(), "nothing provides %q", dep)
			}
			if j == i {
				return nil, cycleError([]string{t.Name(), t.Name()})
			}
			if _, dup := seen[j]; dup {
				continue
			}
			seen[j] = struct{}{}
			p.outgoing[j] = append(p.outgoing[j], i)
			p.incoming[i] = append(p.incoming[i], j)
			p.indeg[i]++
		}
	}
	for i := range p.outgoing {
		sort.Ints(p.outgoing[i])
		sort.Ints(p.incoming[i])
	}

	p.order = p.topoOrderIndices()
	if len(p.order) != n {
		return nil, cycleError(p.findCycle())
	}
	p.depth = p.computeDepth()
	return p, nil
}

// resolve maps a dependency to the topping that satisfies it. Topping names
// take precedence over labels.
func (p *Plan) resolve(dep string) (int, bool) {
	if i, ok := p.byName[dep]; ok {
		return i, true
	}
	i, ok := p.providers[dep]
	return i, ok
}

// Order returns the toppings in execution order.
func (p *Plan) Order() []topping.Topping {
	out := make([]topping.Topping, len(p.order))
	for k, i := range p.order {
		out[k] = p.toppings[i]
	}
	return out
}

// Names returns topping names in execution order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.order))
	for k, i := range p.order {
		out[k] = p.toppings[i].Name()
	}
	return out
}

// Levels groups toppings by depth: every topping in a level depends only on
// toppings of earlier levels. Inside a level declaration order is kept.
func (p *Plan) Levels() [][]topping.Topping {
	maxDepth := -1
	for _, d := range p.depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	levels := make([][]topping.Topping, maxDepth+1)
	for i, t := range p.toppings {
		d := p.depth[i]
		levels[d] = append(levels[d], t)
	}
	return levels
}

// Dependencies returns the names of the toppings name directly depends on.
func (p *Plan) Dependencies(name string) []string {
	i, ok := p.byName[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.incoming[i]))
	for _, j := range p.incoming[i] {
		out = append(out, p.toppings[j].Name())
	}
	return out
}

// Provider returns the topping that declares label.
func (p *Plan) Provider(label string) (string, bool) {
	i, ok := p.providers[label]
	if !ok {
		return "", false
	}
	return p.toppings[i].Name(), true
}

// Descriptors returns the static metadata of every topping in execution order.
func (p *Plan) Descriptors() []topping.Descriptor {
	out := make([]topping.Descriptor, 0, len(p.order))
	for _, t := range p.Order() {
		out = append(out, topping.Describe(t))
	}
	return out
}

func (p *Plan) computeDepth() []int {
	depth := make([]int, len(p.toppings))
	for _, u := range p.order {
		d := 0
		for _, parent := range p.incoming[u] {
			if depth[parent]+1 > d {
				d = depth[parent] + 1
			}
		}
		depth[u] = d
	}
	return depth
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrderIndices runs Kahn's algorithm with a min-heap on declaration
// index as the ready queue.
func (p *Plan) topoOrderIndices() []int {
	indeg := make([]int, len(p.indeg))
	copy(indeg, p.indeg)

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range p.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// findCycle returns one cycle as names in dependency order, starting and
// ending with the same topping. The lowest declaration index is explored
// first so the witness is stable.
func (p *Plan) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(p.toppings))
	parent := make([]int, len(p.toppings))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range p.outgoing[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range p.toppings {
		if color[i] == white && dfs(i) {
			break
		}
	}

	out := make([]string, 0, len(cycle))
	for k := len(cycle) - 1; k >= 0; k-- {
		out = append(out, p.toppings[cycle[k]].Name())
	}
	return out
}
