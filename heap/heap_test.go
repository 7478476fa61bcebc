package heap_test

import (
	"testing"

	"github.com/freemorger/voxvm/heap"
)

func TestAllocFirstFit(t *testing.T) {
	h := heap.New(64)
	a, err := h.Alloc(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != 0 {
		t.Errorf("expected first alloc at 0, got %d", a)
	}
	b, err := h.Alloc(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 16 {
		t.Errorf("expected second alloc at 16, got %d", b)
	}
}

func TestAllocOutOfMemory(t *testing.T) {
	h := heap.New(8)
	if _, err := h.Alloc(16); err != heap.ErrOutOfMemory {
		t.Errorf("expected ErrOutOfMemory, got %v", err)
	}
}

func TestFreeMergesAdjacentBlocks(t *testing.T) {
	h := heap.New(32)
	a, _ := h.Alloc(8)
	b, _ := h.Alloc(8)
	if err := h.Free(a); err != nil {
		t.Fatalf("unexpected error freeing a: %v", err)
	}
	if err := h.Free(b); err != nil {
		t.Fatalf("unexpected error freeing b: %v", err)
	}
	// after merging, a single 32-byte allocation should succeed again.
	if _, err := h.Alloc(32); err != nil {
		t.Errorf("expected merged free block to satisfy full-size alloc, got %v", err)
	}
}

func TestFreeUnknownPointer(t *testing.T) {
	h := heap.New(16)
	if err := h.Free(99); err != heap.ErrBadFree {
		t.Errorf("expected ErrBadFree, got %v", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	h := heap.New(16)
	ptr, _ := h.Alloc(8)
	want := []byte{1, 2, 3, 4}
	if err := h.Write(ptr, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := h.Read(ptr, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestWriteOutOfBounds(t *testing.T) {
	h := heap.New(16)
	ptr, _ := h.Alloc(4)
	if err := h.Write(ptr, []byte{1, 2, 3, 4, 5}); err != heap.ErrOutOfBounds {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestAllocatedPointersReflectsLiveBlocks(t *testing.T) {
	h := heap.New(16)
	a, _ := h.Alloc(4)
	b, _ := h.Alloc(4)
	ptrs := h.AllocatedPointers()
	if len(ptrs) != 2 {
		t.Fatalf("expected 2 allocated pointers, got %d", len(ptrs))
	}
	if err := h.Free(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ptrs = h.AllocatedPointers()
	if len(ptrs) != 1 || ptrs[0] != b {
		t.Errorf("expected only %d to remain allocated, got %v", b, ptrs)
	}
}
