package heap

// Object is a GC-tracked allocation: one is pinned per `alloc`/`allocr`
// call; `allocr_nogc` deliberately never creates one, leaving that
// allocation to be freed manually.
type Object struct {
	HeapPtr uint64
	Marked  bool
}

// GC implements mark-and-sweep collection over the heap's pinned objects,
// tracing reachability from register/stack roots through the heap's
// recorded pointer edges.
type GC struct {
	objects  []Object
	unmarked []int
}

// NewGC returns an empty collector with no pinned objects.
func NewGC() *GC {
	return &GC{}
}

// Pin registers ptr as a GC-tracked allocation.
func (g *GC) Pin(ptr uint64) {
	g.objects = append(g.objects, Object{HeapPtr: ptr})
}

// Mark traces reachability starting from roots (the address-tagged values
// in registers and operand-stack frames, plus the VM's MainRefs) through refs (the heap's saved_refs adjacency,
// source pointer -> set of target pointers it references), using
// breadth-first search, and flips Marked on every pinned object whose
// pointer is reached.
func (g *GC) Mark(roots map[uint64]struct{}, refs map[uint64]map[uint64]struct{}) {
	reachable := make(map[uint64]struct{}, len(roots))
	queue := make([]uint64, 0, len(roots))
	for r := range roots {
		queue = append(queue, r)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := reachable[cur]; seen {
			continue
		}
		reachable[cur] = struct{}{}
		for target := range refs[cur] {
			if _, seen := reachable[target]; !seen {
				queue = append(queue, target)
			}
		}
	}

	g.unmarked = g.unmarked[:0]
	for i := range g.objects {
		obj := &g.objects[i]
		if _, ok := reachable[obj.HeapPtr]; ok {
			obj.Marked = true
		} else {
			obj.Marked = false
			g.unmarked = append(g.unmarked, i)
		}
	}
}

// Sweep removes every object left unmarked by the last Mark call and
// returns the heap pointers that should now be freed.
func (g *GC) Sweep() []uint64 {
	var freed []uint64

	for i := len(g.unmarked) - 1; i >= 0; i-- {
		idx := g.unmarked[i]
		if idx >= len(g.objects) {
			continue
		}
		freed = append(freed, g.objects[idx].HeapPtr)
		g.objects = append(g.objects[:idx], g.objects[idx+1:]...)
	}
	g.unmarked = g.unmarked[:0]
	return freed
}

// Objects returns the currently pinned objects, for inspection in tests.
func (g *GC) Objects() []Object {
	return g.objects
}
