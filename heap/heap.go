// Package heap implements the VM's byte-addressable heap: a split/merge
// first-fit allocator plus the pointer-edge bookkeeping the garbage
// collector needs to trace references that live inside heap blocks.
package heap

import (
	"errors"
	"sort"
)

// Block describes one contiguous span of heap bytes, either free or
// allocated, by its inclusive start and end offsets.
type Block struct {
	Start uint64
	Last  uint64
}

func (b Block) size() uint64 { return b.Last - b.Start + 1 }

var (
	// ErrOutOfMemory is returned when no free block can satisfy a request.
	ErrOutOfMemory = errors.New("heap: no free block large enough")
	// ErrBadFree is returned when freeing a pointer that names no
	// currently allocated block.
	ErrBadFree = errors.New("heap: free of unallocated pointer")
	// ErrOutOfBounds is returned by Read/Write when the requested span
	// does not lie entirely within one allocated block.
	ErrOutOfBounds = errors.New("heap: access out of allocated bounds")
)

// Heap is a growable byte arena managed with a split/merge first-fit
// strategy: allocation finds the first free block large enough and carves
// off exactly the requested size; freeing returns the block and merges it
// with adjacent free neighbors to keep fragmentation down.
type Heap struct {
	bytes     []byte
	free      []Block
	allocated []Block

	// SavedRefs records pointer-to-pointer edges written by the store
	// instruction (heap cell at Source holds an address-tagged value
	// pointing at Target); the GC walks this as an adjacency list when
	// tracing reachability from root pointers.
	SavedRefs map[uint64]map[uint64]struct{}
}

// New creates a heap whose single free block spans the whole requested
// capacity.
func New(size uint64) *Heap {
	h := &Heap{
		bytes:     make([]byte, 0, size),
		free:      []Block{{Start: 0, Last: size - 1}},
		allocated: nil,
		SavedRefs: make(map[uint64]map[uint64]struct{}),
	}
	return h
}

// Alloc reserves countBytes from the first free block with enough room and
// returns its starting address.
func (h *Heap) Alloc(countBytes uint64) (uint64, error) {
	for i := range h.free {
		fb := &h.free[i]
		if fb.size() < countBytes {
			continue
		}
		start := fb.Start
		end := start + countBytes - 1
		h.allocated = append(h.allocated, Block{Start: start, Last: end})

		if fb.Last == end {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			fb.Start = end + 1
		}
		return start, nil
	}
	return 0, ErrOutOfMemory
}

// Free releases the allocated block starting at ptr, merging it into the
// free list and coalescing with any adjacent free blocks.
func (h *Heap) Free(ptr uint64) error {
	idx := -1
	var freed Block
	for i, b := range h.allocated {
		if b.Start == ptr {
			idx = i
			freed = b
			break
		}
	}
	if idx == -1 {
		return ErrBadFree
	}
	h.allocated = append(h.allocated[:idx], h.allocated[idx+1:]...)

	h.free = append(h.free, freed)
	sort.Slice(h.free, func(i, j int) bool { return h.free[i].Start < h.free[j].Start })
	h.mergeFreeBlocks()

	delete(h.SavedRefs, ptr)
	return nil
}

func (h *Heap) mergeFreeBlocks() {
	i := 0
	for i < len(h.free) {
		if i+1 >= len(h.free) {
			i++
			continue
		}
		cur := &h.free[i]
		next := h.free[i+1]
		if cur.Last+1 == next.Start {
			cur.Last = next.Last
			h.free = append(h.free[:i+1], h.free[i+2:]...)
			continue
		}
		i++
	}
}

// FreeAll releases every currently allocated block.
func (h *Heap) FreeAll() {
	ptrs := make([]uint64, len(h.allocated))
	for i, b := range h.allocated {
		ptrs[i] = b.Start
	}
	for _, p := range ptrs {
		_ = h.Free(p)
	}
}

func (h *Heap) findAllocated(ptr, lastByte uint64) (Block, bool) {
	for _, b := range h.allocated {
		if ptr >= b.Start && ptr <= b.Last && lastByte <= b.Last {
			return b, true
		}
	}
	return Block{}, false
}

// Write copies data into the heap starting at ptr, bounds-checked against
// the allocated block containing ptr, growing the backing slice as needed.
func (h *Heap) Write(ptr uint64, data []byte) error {
	if len(data) == 0 {
		if _, ok := h.findAllocated(ptr, ptr); !ok {
			return ErrOutOfBounds
		}
		return nil
	}
	lastToWrite := ptr + uint64(len(data)) - 1
	if _, ok := h.findAllocated(ptr, lastToWrite); !ok {
		return ErrOutOfBounds
	}
	needed := int(lastToWrite) + 1
	if needed > len(h.bytes) {
		grown := make([]byte, needed, max(needed, cap(h.bytes)))
		copy(grown, h.bytes)
		h.bytes = grown
	}
	copy(h.bytes[ptr:], data)
	return nil
}

// Read returns a copy of countBytes heap bytes starting at ptr,
// bounds-checked against the allocated block containing ptr.
func (h *Heap) Read(ptr, countBytes uint64) ([]byte, error) {
	if countBytes == 0 {
		if _, ok := h.findAllocated(ptr, ptr); !ok {
			return nil, ErrOutOfBounds
		}
		return nil, nil
	}
	lastToRead := ptr + countBytes - 1
	if _, ok := h.findAllocated(ptr, lastToRead); !ok {
		return nil, ErrOutOfBounds
	}
	if int(lastToRead) >= len(h.bytes) {
		return nil, ErrOutOfBounds
	}
	out := make([]byte, countBytes)
	copy(out, h.bytes[ptr:lastToRead+1])
	return out, nil
}

// IsAllocated reports whether ptr is the start address of a currently
// allocated block.
func (h *Heap) IsAllocated(ptr uint64) bool {
	for _, b := range h.allocated {
		if b.Start == ptr {
			return true
		}
	}
	return false
}

// AllocatedPointers returns the start address of every currently allocated
// block.
func (h *Heap) AllocatedPointers() []uint64 {
	out := make([]uint64, len(h.allocated))
	for i, b := range h.allocated {
		out[i] = b.Start
	}
	return out
}

// Bytes returns the heap's written region, zero-padded out to its full
// capacity, for coredump snapshots. Callers must not mutate the result.
func (h *Heap) Bytes() []byte {
	out := make([]byte, cap(h.bytes))
	copy(out, h.bytes)
	return out
}

// RecordRef notes that the heap cell at source holds a pointer to target,
// for the GC's reachability trace.
func (h *Heap) RecordRef(source, target uint64) {
	set, ok := h.SavedRefs[source]
	if !ok {
		set = make(map[uint64]struct{})
		h.SavedRefs[source] = set
	}
	set[target] = struct{}{}
}
