package vm_test

import (
	"encoding/binary"
	"testing"

	"github.com/freemorger/voxvm/isa"
	"github.com/freemorger/voxvm/register"
	"github.com/freemorger/voxvm/vm"
)

// writeUintRecord pokes a uint record (const when isConst is set) directly
// into the data segment at reladdr, bypassing the assembler since these tests exercise
// the interpreter's addressing logic in isolation.
func writeUintRecord(v *vm.VM, reladdr uint64, value uint64, isConst bool) {
	header := byte(0x1)
	if isConst {
		header |= 0x10
	}
	v.Mem.WriteByte(v.Mem.DataBase+reladdr, header)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], 8)
	v.Mem.WriteBytes(v.Mem.DataBase+reladdr+1, lenBuf[:])
	var payload [8]byte
	binary.BigEndian.PutUint64(payload[:], value)
	v.Mem.WriteBytes(v.Mem.DataBase+reladdr+9, payload[:])
}

func TestDsloadReadsTypedValue(t *testing.T) {
	a := new(asm)
	a.op(isa.OpDsload).reg(1).u64(0).u64(0)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 32, nil, 4096, 1000)
	writeUintRecord(v, 0, 99, false)

	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Registers[1].Tag != register.TagUint || v.Registers[1].Uint() != 99 {
		t.Errorf("got %+v", v.Registers[1])
	}
}

func TestDssaveOnConstRecordIsFatal(t *testing.T) {
	a := new(asm)
	a.op(isa.OpUload).reg(1).u64(5)
	a.op(isa.OpDssave).reg(1).u64(0).u64(0)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 32, nil, 4096, 1000)
	writeUintRecord(v, 0, 1, true)

	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error on uload: %v", err)
	}
	if err := v.Step(); err == nil {
		t.Fatalf("expected fatal error writing a const record")
	}
}

func TestDsleaThenDsderefRoundTrips(t *testing.T) {
	a := new(asm)
	a.op(isa.OpDslea).reg(1).u64(0).u64(0)
	a.op(isa.OpDsderef).reg(1).reg(2).u64(0)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 32, nil, 4096, 1000)
	writeUintRecord(v, 0, 77, false)

	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Registers[1].Tag != register.TagDSAddr {
		t.Fatalf("expected ds_addr tag, got %v", v.Registers[1].Tag)
	}
	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Registers[2].Tag != register.TagUint || v.Registers[2].Uint() != 77 {
		t.Errorf("got %+v", v.Registers[2])
	}
}
