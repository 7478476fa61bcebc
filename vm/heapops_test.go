package vm_test

import (
	"testing"

	"github.com/freemorger/voxvm/isa"
	"github.com/freemorger/voxvm/register"
	"github.com/freemorger/voxvm/vm"
)

func TestAllocStoreLoadRoundTrip(t *testing.T) {
	a := new(asm)
	a.op(isa.OpAlloc).reg(1).u64(8)
	a.op(isa.OpUload).reg(2).u64(1234)
	a.op(isa.OpStore).reg(1).reg(2)
	a.op(isa.OpUload).reg(3).u64(uint64(register.TagUint))
	a.op(isa.OpLoad).reg(3).reg(4).reg(1)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 0, nil, 4096, 1000)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Registers[4].Tag != register.TagUint || v.Registers[4].Uint() != 1234 {
		t.Errorf("got %+v", v.Registers[4])
	}
}

func TestFreeThenAllocReusesSpace(t *testing.T) {
	a := new(asm)
	a.op(isa.OpAlloc).reg(1).u64(16)
	a.op(isa.OpFree).reg(1)
	a.op(isa.OpAlloc).reg(2).u64(16)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 0, nil, 4096, 1000)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Registers[1].Uint() != v.Registers[2].Uint() {
		t.Errorf("expected freed block to be reused, got %d vs %d", v.Registers[1].Uint(), v.Registers[2].Uint())
	}
}

func TestGarbageCollectionFreesUnreachableChain(t *testing.T) {
	a := new(asm)
	// allocate 3 16-byte blocks, chain 0 -> 1 -> 2 via store, then drop
	// the head register and force a collection.
	a.op(isa.OpAlloc).reg(1).u64(16)
	a.op(isa.OpAlloc).reg(2).u64(16)
	a.op(isa.OpAlloc).reg(3).u64(16)
	a.op(isa.OpStore).reg(1).reg(2)
	a.op(isa.OpStore).reg(2).reg(3)
	a.op(isa.OpUload).reg(1).u64(0)
	a.op(isa.OpUload).reg(2).u64(0)
	a.op(isa.OpUload).reg(3).u64(0)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 0, nil, 4096, 1000)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v.CollectGarbage()
	if len(v.GC.Objects()) != 0 {
		t.Errorf("expected all objects collected once unreachable, got %d remaining", len(v.GC.Objects()))
	}
}
