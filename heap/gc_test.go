package heap_test

import (
	"testing"

	"github.com/freemorger/voxvm/heap"
)

func TestMarkSweepCollectsUnreachable(t *testing.T) {
	g := heap.NewGC()
	g.Pin(10)
	g.Pin(20)
	g.Pin(30)

	roots := map[uint64]struct{}{10: {}}
	refs := map[uint64]map[uint64]struct{}{
		10: {20: {}},
	}
	g.Mark(roots, refs)
	freed := g.Sweep()

	if len(freed) != 1 || freed[0] != 30 {
		t.Fatalf("expected only 30 to be collected, got %v", freed)
	}
	remaining := g.Objects()
	if len(remaining) != 2 {
		t.Errorf("expected 2 objects to survive, got %d", len(remaining))
	}
}

func TestMarkSweepEmptyRootsCollectsEverything(t *testing.T) {
	g := heap.NewGC()
	g.Pin(1)
	g.Pin(2)

	g.Mark(map[uint64]struct{}{}, nil)
	freed := g.Sweep()

	if len(freed) != 2 {
		t.Errorf("expected both objects collected, got %v", freed)
	}
}

func TestMarkSweepTransitiveChain(t *testing.T) {
	g := heap.NewGC()
	g.Pin(1)
	g.Pin(2)
	g.Pin(3)

	roots := map[uint64]struct{}{1: {}}
	refs := map[uint64]map[uint64]struct{}{
		1: {2: {}},
		2: {3: {}},
	}
	g.Mark(roots, refs)
	freed := g.Sweep()

	if len(freed) != 0 {
		t.Errorf("expected nothing collected in a fully chained-reachable graph, got %v", freed)
	}
}
