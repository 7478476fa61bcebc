package vm_test

import (
	"encoding/binary"
	"testing"

	"github.com/freemorger/voxvm/isa"
	"github.com/freemorger/voxvm/register"
	"github.com/freemorger/voxvm/vm"
)

type asm struct {
	buf []byte
}

func (a *asm) op(o isa.Opcode) *asm {
	a.buf = append(a.buf, byte(o))
	return a
}

func (a *asm) reg(r byte) *asm {
	a.buf = append(a.buf, r)
	return a
}

func (a *asm) u64(v uint64) *asm {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	a.buf = append(a.buf, b[:]...)
	return a
}

func (a *asm) u16(v uint16) *asm {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	a.buf = append(a.buf, b[:]...)
	return a
}

func newVM(code []byte) *vm.VM {
	return vm.New(code, 256, nil, 4096, 1000)
}

func TestUloadPushPopRoundTripPreservesTag(t *testing.T) {
	a := new(asm)
	a.op(isa.OpUload).reg(1).u64(42)
	a.op(isa.OpPush).reg(1)
	a.op(isa.OpPop).reg(2)
	a.op(isa.OpHalt)

	v := newVM(a.buf)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Registers[2].Tag != register.TagUint || v.Registers[2].Uint() != 42 {
		t.Errorf("got %+v", v.Registers[2])
	}
}

func TestUdivByZeroRaisesExceptionAndAdvancesByFour(t *testing.T) {
	a := new(asm)
	a.op(isa.OpUload).reg(1).u64(10)
	a.op(isa.OpUload).reg(2).u64(0)
	divIP := len(a.buf)
	a.op(isa.OpUdiv).reg(0).reg(1).reg(2)
	a.op(isa.OpHalt)

	v := newVM(a.buf)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The run halts without a fatal error, the queued ZeroDivision stays
	// pending (nothing consumes it), and IP rests on the halt that follows
	// the 4-byte udiv.
	if v.State.String() != "halted" {
		t.Errorf("expected halted, got %s", v.State)
	}
	if v.IP != uint64(divIP)+4 {
		t.Errorf("expected IP %d after udiv, got %d", divIP+4, v.IP)
	}
	if !hasPending(v, vm.ExcZeroDivision) {
		t.Errorf("expected ZeroDivision pending, got %v", v.Exceptions.Pending())
	}
}

func hasPending(v *vm.VM, kind vm.ExceptionKind) bool {
	for _, k := range v.Exceptions.Pending() {
		if k == kind {
			return true
		}
	}
	return false
}

func TestUdivByZeroQueuesZeroDivision(t *testing.T) {
	a := new(asm)
	a.op(isa.OpUload).reg(1).u64(10)
	a.op(isa.OpUload).reg(2).u64(0)
	a.op(isa.OpUdiv).reg(0).reg(1).reg(2)
	a.op(isa.OpHalt)

	v := newVM(a.buf)
	// Step past the two uloads.
	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ipBefore := v.IP
	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IP != ipBefore+4 {
		t.Errorf("expected IP to advance by 4, got delta %d", v.IP-ipBefore)
	}
	if !hasPending(v, vm.ExcZeroDivision) {
		t.Errorf("expected ZeroDivision pending, got %v", v.Exceptions.Pending())
	}
}

func TestFsqrtNegativeRaisesNegativeSqrt(t *testing.T) {
	a := new(asm)
	a.op(isa.OpFload).reg(1).u64(negOneBits())
	a.op(isa.OpFsqrt).reg(2).reg(1)
	a.op(isa.OpHalt)

	v := newVM(a.buf)
	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// fsqrt on a negative operand must not have written a result.
	if v.Registers[2].Tag == register.TagFloat && v.Registers[2].Float() != 0 {
		t.Errorf("expected no result written on fault, got %+v", v.Registers[2])
	}
	if !hasPending(v, vm.ExcNegativeSqrt) {
		t.Errorf("expected NegativeSqrt pending, got %v", v.Exceptions.Pending())
	}
}

func negOneBits() uint64 {
	r := register.FromFloat(-1)
	return r.Bits
}

func TestCallrMatchesCallViaFnstind(t *testing.T) {
	a := new(asm)
	a.op(isa.OpFnstind).reg(1).u64(0)
	a.op(isa.OpCallr).reg(1)
	a.op(isa.OpHalt)
	funcBody := len(a.buf)
	a.op(isa.OpHalt)

	v := vm.New(a.buf, 0, []uint64{uint64(funcBody)}, 4096, 1000)
	if err := v.Step(); err != nil { // fnstind
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Step(); err != nil { // callr
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IP != uint64(funcBody) {
		t.Errorf("expected IP at function body %d, got %d", funcBody, v.IP)
	}
}

func TestHaltStopsRun(t *testing.T) {
	a := new(asm)
	a.op(isa.OpHalt)
	v := newVM(a.buf)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.State.String() != "halted" {
		t.Errorf("expected halted, got %s", v.State)
	}
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	v := newVM([]byte{0x03})
	if err := v.Run(); err == nil {
		t.Fatalf("expected fatal error on unknown opcode")
	}
	if v.State.String() != "fatal" {
		t.Errorf("expected fatal, got %s", v.State)
	}
}

func TestNcallUnregisteredRaisesNativeFault(t *testing.T) {
	a := new(asm)
	a.op(isa.OpNcall).u16(0x01).reg(1)
	a.op(isa.OpHalt)
	v := newVM(a.buf)
	if err := v.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasPending(v, vm.ExcNativeFault) {
		t.Errorf("expected NativeFault pending, got %v", v.Exceptions.Pending())
	}
}
